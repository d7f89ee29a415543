package textpipe

import (
	"golang.org/x/sync/errgroup"
)

// Run validates all runners, starts them and waits until all of them are
// done. If any runner is misconfigured, nothing is started and error is
// returned for every misconfigured runner. Stream faults are handled by
// components themselves and never returned.
func Run(runners ...Runner) error {
	var errs execErrors
	for _, r := range runners {
		if err := r.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errs.ret(); err != nil {
		return err
	}

	var g errgroup.Group
	for _, r := range runners {
		r := r
		g.Go(func() error {
			// validated runner fails to start only if it's already running.
			if err := r.Start(); err != nil {
				return err
			}
			r.Wait()
			return nil
		})
	}
	return g.Wait()
}
