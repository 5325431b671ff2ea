package promise

import "golang.org/x/sync/errgroup"

// All joins value-or-promise outcomes into one aggregate promise.
//
// The aggregate resolves with a []any holding each resolved value at its input index once every
// outcome has resolved. It rejects as soon as any outcome rejects, carrying that error unchanged.
// Outcomes still pending at that point are neither awaited nor cancelled; later rejections are
// discarded. An outcome that never settles keeps the aggregate pending forever.
func All(outcomes []any) *Promise {
	agg := newPromise()
	results := make([]any, len(outcomes))

	var g errgroup.Group

	for i, o := range outcomes {
		p := From(o)

		g.Go(func() error {
			<-p.Done()

			v, err := p.Result()
			if err != nil {
				agg.reject(err)

				return err
			}

			results[i] = v

			return nil
		})
	}

	go func() {
		if err := g.Wait(); err == nil {
			agg.resolve(results)
		}
	}()

	return agg
}
