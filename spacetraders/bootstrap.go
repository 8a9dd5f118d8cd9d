package spacetraders

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Start brings the client to the ready state: it checks the API status,
// fetches the account and loads the reference data every other call relies
// on. On any failure the client is shut down and the error returned. A Stop
// during Start makes Start fail with ErrConnectionTerminated.
func (c *Client) Start(ctx context.Context) error {
	if !c.session.transition(StateAuthPending, StateStatusChecking) {
		return c.reject("", "", NewInvalidInput(fmt.Sprintf("client cannot start from state %s", c.State()), nil))
	}

	started := time.Now()
	c.logger.Debug().Strs("systems", c.systems).Msg("Starting SpaceTraders session")

	status, err := c.GetStatus(ctx)
	if err != nil {
		c.halt(ctx, StateDown)
		return err
	}
	c.logger.Debug().Str("status", status.Message).Msg("SpaceTraders API is up")

	if err := c.advance(ctx, StateStatusChecking, StateAccountFetching); err != nil {
		return err
	}
	user, err := c.GetAccount(ctx)
	if err != nil {
		return c.abort(ctx, err)
	}
	c.session.setUser(user)

	if err := c.advance(ctx, StateAccountFetching, StateBootstrapping); err != nil {
		return err
	}
	ref, err := c.warmLoad(ctx)
	if err != nil {
		return c.abort(ctx, err)
	}
	c.session.setReference(ref)

	if err := c.session.markReady(); err != nil {
		if errors.Is(err, ErrConnectionTerminated) {
			return c.interrupted(ctx)
		}
		return c.abort(ctx, c.reject("", "", &Error{
			Kind:    KindUpstreamUnavailable,
			Message: err.Error(),
			Err:     err,
		}))
	}

	c.logger.Info().
		Str("username", user.Username).
		Int64("credits", user.Credits).
		Int("systems", len(ref.systems)).
		Dur("elapsed", time.Since(started)).
		Msg("SpaceTraders client ready")
	c.observers.emit(Event{Name: EventReady})

	return nil
}

// Stop shuts the client down. Queued calls fail with connection-terminated
// and in-flight calls are waited for until ctx is done.
func (c *Client) Stop(ctx context.Context) error {
	return c.halt(ctx, StateStopped)
}

// advance moves Start to its next step, failing if Stop got there first
func (c *Client) advance(ctx context.Context, from, to State) error {
	if c.session.transition(from, to) {
		return nil
	}
	return c.interrupted(ctx)
}

// interrupted is the error Start returns after a concurrent Stop
func (c *Client) interrupted(ctx context.Context) error {
	c.halt(ctx, StateStopped)
	return newTerminated(fmt.Sprintf("client was %s during start", c.State()), nil)
}

// abort marks bootstrap as failed and shuts the client down. err has already
// been emitted.
func (c *Client) abort(ctx context.Context, err error) error {
	if c.session.failReady() {
		c.logger.Error().Err(err).Msg("SpaceTraders bootstrap failed")
	}
	c.halt(ctx, StateStopped)
	return err
}

// halt stops the scheduler, drops the transport and moves to final
func (c *Client) halt(ctx context.Context, final State) error {
	if !c.session.finish(final) {
		return nil
	}

	err := c.scheduler.Stop(ctx)
	c.session.invalidate()

	c.logger.Info().Str("state", final.String()).Msg("SpaceTraders client stopped")
	c.observers.emit(Event{Name: EventStopped})

	return err
}

// errWarmLoadAborted cancels the remaining reference fetches once one fails
var errWarmLoadAborted = errors.New("reference load aborted")

// warmLoad fetches every reference collection concurrently. The scheduler
// keeps the outbound calls paced and ordered. The first failure cancels the
// other fetches and is the error returned.
func (c *Client) warmLoad(ctx context.Context) (reference, error) {
	var ref reference
	ref.systems = make([]System, len(c.systems))

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	var (
		g        errgroup.Group
		once     sync.Once
		firstErr error
	)
	fetch := func(fn func() error) {
		g.Go(func() error {
			err := fn()
			if err != nil {
				once.Do(func() {
					firstErr = err
					cancel(errWarmLoadAborted)
				})
			}
			return err
		})
	}

	for i, symbol := range c.systems {
		fetch(func() error {
			locations, err := c.systemLocations(ctx, symbol, false)
			if err != nil {
				return err
			}
			info, err := c.systemInfo(ctx, symbol, false)
			if err != nil {
				return err
			}
			ref.systems[i] = ComposeSystem(info, locations)
			return nil
		})
	}

	fetch(func() error {
		goods, err := c.goods(ctx, false)
		ref.goods = goods
		return err
	})

	fetch(func() error {
		shipTypes, err := c.shipTypes(ctx, "", false)
		ref.shipTypes = shipTypes
		return err
	})

	fetch(func() error {
		structureTypes, err := c.structureTypes(ctx, false)
		ref.structureTypes = structureTypes
		return err
	})

	fetch(func() error {
		loanTypes, err := c.loanTypes(ctx, false)
		ref.loanTypes = loanTypes
		return err
	})

	if g.Wait() != nil {
		return reference{}, firstErr
	}

	c.logger.Debug().
		Int("systems", len(ref.systems)).
		Int("goods", len(ref.goods)).
		Int("ship_types", len(ref.shipTypes)).
		Int("structure_types", len(ref.structureTypes)).
		Int("loan_types", len(ref.loanTypes)).
		Msg("Loaded SpaceTraders reference data")

	return ref, nil
}
