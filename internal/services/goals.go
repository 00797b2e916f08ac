package services

import (
	"context"
	"time"

	"merit/internal/core"
	"merit/internal/ids"
	"merit/internal/storage"
)

// GoalService manages savings goals and their append-only event log. Every
// mutation writes the goal row and its events in one transaction, so the
// log can always be replayed into the row's current state.
type GoalService struct {
	repo *storage.Repository
	ids  ids.Generator

	now func() time.Time
}

func NewGoalService(repo *storage.Repository, gen ids.Generator) *GoalService {
	return &GoalService{repo: repo, ids: gen, now: time.Now}
}

type CreateGoalInput struct {
	UserID        string
	Name          string
	Icon          string
	TargetAmount  core.Money
	CurrentAmount core.Money
	TargetDate    core.Date
}

// Create inserts the goal together with its create event. A goal whose
// starting amount already meets the target is born completed; the create
// event alone records that, there is no separate complete event.
func (s *GoalService) Create(ctx context.Context, in CreateGoalInput) (core.SavingsGoal, error) {
	now := s.now().UTC()
	g := core.SavingsGoal{
		ID:            s.ids.NewID(),
		UserID:        in.UserID,
		Name:          in.Name,
		Icon:          in.Icon,
		TargetAmount:  in.TargetAmount,
		CurrentAmount: in.CurrentAmount,
		TargetDate:    in.TargetDate,
		IsCompleted:   core.CompletionOf(in.CurrentAmount, in.TargetAmount),
		CreatedAt:     now,
	}
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}

	err := s.repo.WithTx(ctx, func(q *storage.Queries) error {
		if err := q.InsertGoal(ctx, g); err != nil {
			return err
		}
		return q.InsertGoalEvent(ctx, core.GoalEvent{
			ID:        s.ids.NewID(),
			GoalID:    g.ID,
			UserID:    g.UserID,
			Type:      core.EventCreate,
			CreatedAt: now,
			Detail: core.CreateDetail{
				NewCurrent:    g.CurrentAmount,
				NewTarget:     g.TargetAmount,
				NewTargetDate: g.TargetDate,
			},
		})
	})
	if err != nil {
		return core.SavingsGoal{}, err
	}
	return g, nil
}

// Add deposits into a goal. Crossing the target marks the goal completed and
// appends a complete event; an already-completed goal never reopens here,
// even though a deposit cannot lower the amount anyway.
func (s *GoalService) Add(ctx context.Context, goalID string, delta core.Money, note string) (core.SavingsGoal, error) {
	if delta.Cents <= 0 {
		return core.SavingsGoal{}, core.ErrInvalidAmount
	}

	g, err := s.repo.GetGoal(ctx, goalID)
	if err != nil {
		return core.SavingsGoal{}, err
	}

	old := g.CurrentAmount
	g.CurrentAmount = old.Add(delta)
	completedNow := g.IsCompleted || core.CompletionOf(g.CurrentAmount, g.TargetAmount)
	crossed := completedNow && !g.IsCompleted
	g.IsCompleted = completedNow

	now := s.now().UTC()
	err = s.repo.WithTx(ctx, func(q *storage.Queries) error {
		if err := q.UpdateGoalCurrent(ctx, g.ID, g.CurrentAmount, g.IsCompleted); err != nil {
			return err
		}
		if err := q.InsertGoalEvent(ctx, core.GoalEvent{
			ID:        s.ids.NewID(),
			GoalID:    g.ID,
			UserID:    g.UserID,
			Type:      core.EventAdd,
			Note:      note,
			CreatedAt: now,
			Detail: core.AddDetail{
				Delta:      delta,
				OldCurrent: old,
				NewCurrent: g.CurrentAmount,
			},
		}); err != nil {
			return err
		}
		if crossed {
			return q.InsertGoalEvent(ctx, core.GoalEvent{
				ID:        s.ids.NewID(),
				GoalID:    g.ID,
				UserID:    g.UserID,
				Type:      core.EventComplete,
				CreatedAt: now,
			})
		}
		return nil
	})
	if err != nil {
		return core.SavingsGoal{}, err
	}
	return g, nil
}

// SetCurrent overwrites the saved amount. Unlike Add this re-derives the
// completion flag in both directions, so lowering the amount below the
// target reopens a completed goal.
func (s *GoalService) SetCurrent(ctx context.Context, goalID string, amount core.Money, note string) (core.SavingsGoal, error) {
	if amount.Cents < 0 {
		return core.SavingsGoal{}, core.ErrInvalidAmount
	}

	g, err := s.repo.GetGoal(ctx, goalID)
	if err != nil {
		return core.SavingsGoal{}, err
	}

	old := g.CurrentAmount
	wasCompleted := g.IsCompleted
	g.CurrentAmount = amount
	g.IsCompleted = core.CompletionOf(amount, g.TargetAmount)

	now := s.now().UTC()
	err = s.repo.WithTx(ctx, func(q *storage.Queries) error {
		if err := q.UpdateGoalCurrent(ctx, g.ID, g.CurrentAmount, g.IsCompleted); err != nil {
			return err
		}
		if err := q.InsertGoalEvent(ctx, core.GoalEvent{
			ID:        s.ids.NewID(),
			GoalID:    g.ID,
			UserID:    g.UserID,
			Type:      core.EventSetCurrent,
			Note:      note,
			CreatedAt: now,
			Detail: core.SetCurrentDetail{
				OldCurrent: old,
				NewCurrent: amount,
			},
		}); err != nil {
			return err
		}
		return s.appendBoundaryEvent(ctx, q, g, wasCompleted, now)
	})
	if err != nil {
		return core.SavingsGoal{}, err
	}
	return g, nil
}

type EditGoalInput struct {
	Name          string
	Icon          string
	TargetAmount  core.Money
	CurrentAmount core.Money
	TargetDate    core.Date
}

// Edit replaces the goal's editable fields at once and logs a full
// before/after snapshot. Completion is re-derived from the new numbers.
func (s *GoalService) Edit(ctx context.Context, goalID string, in EditGoalInput, note string) (core.SavingsGoal, error) {
	g, err := s.repo.GetGoal(ctx, goalID)
	if err != nil {
		return core.SavingsGoal{}, err
	}

	before := g
	g.Name = in.Name
	g.Icon = in.Icon
	g.TargetAmount = in.TargetAmount
	g.CurrentAmount = in.CurrentAmount
	g.TargetDate = in.TargetDate
	g.IsCompleted = core.CompletionOf(in.CurrentAmount, in.TargetAmount)
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}

	now := s.now().UTC()
	err = s.repo.WithTx(ctx, func(q *storage.Queries) error {
		if err := q.UpdateGoal(ctx, g); err != nil {
			return err
		}
		if err := q.InsertGoalEvent(ctx, core.GoalEvent{
			ID:        s.ids.NewID(),
			GoalID:    g.ID,
			UserID:    g.UserID,
			Type:      core.EventEdit,
			Note:      note,
			CreatedAt: now,
			Detail: core.EditDetail{
				OldCurrent:    before.CurrentAmount,
				NewCurrent:    g.CurrentAmount,
				OldTarget:     before.TargetAmount,
				NewTarget:     g.TargetAmount,
				OldTargetDate: before.TargetDate,
				NewTargetDate: g.TargetDate,
			},
		}); err != nil {
			return err
		}
		return s.appendBoundaryEvent(ctx, q, g, before.IsCompleted, now)
	})
	if err != nil {
		return core.SavingsGoal{}, err
	}
	return g, nil
}

// SetCompleted forces the completion flag, leaving the amounts untouched.
// This is the one path where the flag may diverge from the amounts. The
// matching complete or reopen event is its primary event and is appended on
// every call, even when the flag already holds the requested value.
func (s *GoalService) SetCompleted(ctx context.Context, goalID string, completed bool) error {
	g, err := s.repo.GetGoal(ctx, goalID)
	if err != nil {
		return err
	}

	typ := core.EventReopen
	if completed {
		typ = core.EventComplete
	}
	now := s.now().UTC()
	return s.repo.WithTx(ctx, func(q *storage.Queries) error {
		if err := q.UpdateGoalCompleted(ctx, g.ID, completed); err != nil {
			return err
		}
		return q.InsertGoalEvent(ctx, core.GoalEvent{
			ID:        s.ids.NewID(),
			GoalID:    g.ID,
			UserID:    g.UserID,
			Type:      typ,
			CreatedAt: now,
		})
	})
}

// appendBoundaryEvent writes a complete or reopen event when the goal's
// completion flag crossed, and nothing otherwise.
func (s *GoalService) appendBoundaryEvent(ctx context.Context, q *storage.Queries, g core.SavingsGoal, wasCompleted bool, at time.Time) error {
	if g.IsCompleted == wasCompleted {
		return nil
	}
	typ := core.EventComplete
	if !g.IsCompleted {
		typ = core.EventReopen
	}
	return q.InsertGoalEvent(ctx, core.GoalEvent{
		ID:        s.ids.NewID(),
		GoalID:    g.ID,
		UserID:    g.UserID,
		Type:      typ,
		CreatedAt: at,
	})
}

// Delete removes the goal and its whole event log together.
func (s *GoalService) Delete(ctx context.Context, goalID string) error {
	return s.repo.WithTx(ctx, func(q *storage.Queries) error {
		return q.DeleteGoal(ctx, goalID)
	})
}

func (s *GoalService) Get(ctx context.Context, goalID string) (core.SavingsGoal, error) {
	return s.repo.GetGoal(ctx, goalID)
}

func (s *GoalService) List(ctx context.Context, userID string) ([]core.SavingsGoal, error) {
	return s.repo.ListGoals(ctx, userID)
}

// Events returns the goal's audit trail in append order.
func (s *GoalService) Events(ctx context.Context, goalID string) ([]core.GoalEvent, error) {
	if _, err := s.repo.GetGoal(ctx, goalID); err != nil {
		return nil, err
	}
	return s.repo.ListGoalEvents(ctx, goalID)
}
