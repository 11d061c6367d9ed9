// Package workflow owns the application status transition rules. Every
// status change in the system, whether requested directly or cascaded from a
// payment or biometric update, is evaluated here against a single table of
// (action, authorization, precondition, effects). Evaluate is pure: it never
// touches storage, it only decides.
package workflow

import (
	"errors"
	"fmt"

	"visa-processing/internal/domain"
)

type Action string

const (
	ActionSubmit             Action = "submit"
	ActionCancel             Action = "cancel"
	ActionSetStatus          Action = "set_status"
	ActionProvideCost        Action = "provide_cost"
	ActionScheduleBiometrics Action = "schedule_biometrics"
	ActionCompleteBiometrics Action = "complete_biometrics"
	ActionCancelBiometrics   Action = "cancel_biometrics"
	ActionCompletePayment    Action = "complete_payment"
)

// Effect is a side effect the application service must perform in the same
// transaction as the status write. Evaluate only names effects, it never
// runs them.
type Effect string

const (
	EffectStampSubmitted      Effect = "stamp_submitted_at"
	EffectStampReviewed       Effect = "stamp_reviewed_at"
	EffectStampApproved       Effect = "stamp_approved_at"
	EffectStampRejected       Effect = "stamp_rejected_at"
	EffectStampBiometricsDate Effect = "stamp_biometrics_date"
	EffectStampCostFields     Effect = "stamp_cost_fields"

	EffectNotifyAdminsSubmitted    Effect = "notify_admins_submitted"
	EffectNotifyOwnerStatus        Effect = "notify_owner_status_update"
	EffectNotifyOwnerFarewell      Effect = "notify_owner_farewell"
	EffectNotifyOwnerCost          Effect = "notify_owner_cost_estimation"
	EffectNotifyOwnerBiometrics    Effect = "notify_owner_biometrics_scheduled"
	EffectNotifyOwnerBiometricsUpd Effect = "notify_owner_biometrics_update"
	EffectNotifyOwnerPayment       Effect = "notify_owner_payment_confirmation"
)

// Caller is the explicit identity evaluated against each rule. Ownership is
// resolved by the service before calling Evaluate; the engine never reads
// ambient request state.
type Caller struct {
	Role    string
	IsOwner bool
}

func (c Caller) isAdmin() bool {
	return c.Role == string(domain.RoleAdmin)
}

func (c Caller) isStaff() bool {
	return c.Role == string(domain.RoleAdmin) || c.Role == string(domain.RoleOfficer)
}

// Request names the action to evaluate. Target is only read for
// ActionSetStatus and must already be normalized through
// domain.NormalizeStatus.
type Request struct {
	Action Action
	Target domain.ApplicationStatus
}

type Outcome struct {
	Next    domain.ApplicationStatus
	Effects []Effect
}

var (
	ErrNotAllowed    = errors.New("caller may not perform this action")
	ErrBadState      = errors.New("action not allowed from current status")
	ErrUnknownStatus = errors.New("unknown application status")
	ErrUnknownAction = errors.New("unknown workflow action")
)

type rule struct {
	authorize func(c Caller) bool
	evaluate  func(current, target domain.ApplicationStatus) (*Outcome, error)
}

func ownerOnly(c Caller) bool    { return c.IsOwner }
func ownerOrAdmin(c Caller) bool { return c.IsOwner || c.isAdmin() }
func adminOnly(c Caller) bool    { return c.isAdmin() }
func staffOnly(c Caller) bool    { return c.isStaff() }

var transitions = map[Action]rule{
	ActionSubmit: {
		authorize: ownerOnly,
		evaluate: func(current, _ domain.ApplicationStatus) (*Outcome, error) {
			if current != domain.StatusDraft {
				return nil, fmt.Errorf("%w: only draft applications can be submitted, current status is %s", ErrBadState, current)
			}
			return &Outcome{
				Next:    domain.StatusSubmitted,
				Effects: []Effect{EffectStampSubmitted, EffectNotifyAdminsSubmitted},
			}, nil
		},
	},
	ActionCancel: {
		authorize: ownerOrAdmin,
		evaluate: func(current, _ domain.ApplicationStatus) (*Outcome, error) {
			if current.IsTerminal() || current == domain.StatusApproved {
				return nil, fmt.Errorf("%w: application in status %s cannot be cancelled", ErrBadState, current)
			}
			return &Outcome{Next: domain.StatusCancelled}, nil
		},
	},
	ActionSetStatus: {
		authorize: adminOnly,
		evaluate: func(current, target domain.ApplicationStatus) (*Outcome, error) {
			if current.IsTerminal() {
				return nil, fmt.Errorf("%w: %s is a terminal status", ErrBadState, current)
			}
			if !target.IsValid() {
				return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, target)
			}
			if target == domain.StatusDraft {
				return nil, fmt.Errorf("%w: applications cannot move back to draft", ErrBadState)
			}
			if target == current {
				return nil, fmt.Errorf("%w: application is already %s", ErrBadState, current)
			}
			effects := []Effect{}
			if stamp := stampForTarget(target); stamp != "" {
				effects = append(effects, stamp)
			}
			effects = append(effects, EffectNotifyOwnerStatus)
			if target == domain.StatusCompleted || target == domain.StatusIssued {
				effects = append(effects, EffectNotifyOwnerFarewell)
			}
			return &Outcome{Next: target, Effects: effects}, nil
		},
	},
	ActionProvideCost: {
		authorize: adminOnly,
		evaluate: func(current, _ domain.ApplicationStatus) (*Outcome, error) {
			if current.IsTerminal() {
				return nil, fmt.Errorf("%w: %s is a terminal status", ErrBadState, current)
			}
			if current == domain.StatusCostProvided {
				return nil, fmt.Errorf("%w: cost estimation has already been sent", ErrBadState)
			}
			return &Outcome{
				Next:    domain.StatusCostProvided,
				Effects: []Effect{EffectStampCostFields, EffectNotifyOwnerCost},
			}, nil
		},
	},
	ActionScheduleBiometrics: {
		authorize: staffOnly,
		evaluate: func(current, _ domain.ApplicationStatus) (*Outcome, error) {
			if current.IsTerminal() {
				return nil, fmt.Errorf("%w: %s is a terminal status", ErrBadState, current)
			}
			return &Outcome{
				Next:    domain.StatusBiometricsScheduled,
				Effects: []Effect{EffectStampBiometricsDate, EffectNotifyOwnerBiometrics},
			}, nil
		},
	},
	ActionCompleteBiometrics: {
		authorize: staffOnly,
		evaluate: func(current, _ domain.ApplicationStatus) (*Outcome, error) {
			if current.IsTerminal() {
				return nil, fmt.Errorf("%w: %s is a terminal status", ErrBadState, current)
			}
			return &Outcome{
				Next:    domain.StatusBiometricsCompleted,
				Effects: []Effect{EffectNotifyOwnerBiometricsUpd},
			}, nil
		},
	},
	ActionCancelBiometrics: {
		authorize: staffOnly,
		evaluate: func(current, _ domain.ApplicationStatus) (*Outcome, error) {
			if current.IsTerminal() {
				return nil, fmt.Errorf("%w: %s is a terminal status", ErrBadState, current)
			}
			return &Outcome{
				Next:    domain.StatusDocumentsRequired,
				Effects: []Effect{EffectNotifyOwnerBiometricsUpd},
			}, nil
		},
	},
	ActionCompletePayment: {
		authorize: staffOnly,
		evaluate: func(current, _ domain.ApplicationStatus) (*Outcome, error) {
			// The payment itself completes regardless; the application only
			// moves when it was waiting on this payment.
			if current != domain.StatusPaymentPending {
				return &Outcome{Next: current}, nil
			}
			return &Outcome{
				Next:    domain.StatusPaymentCompleted,
				Effects: []Effect{EffectNotifyOwnerPayment},
			}, nil
		},
	},
}

// Evaluate decides a single transition. Authorization is checked before any
// precondition, so an unauthorized caller learns nothing about the
// application's state. A nil error means the returned outcome may be
// persisted; Next equal to current means no status write is needed.
func Evaluate(current domain.ApplicationStatus, req Request, caller Caller) (*Outcome, error) {
	r, ok := transitions[req.Action]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, req.Action)
	}
	if !r.authorize(caller) {
		return nil, ErrNotAllowed
	}
	if !current.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, current)
	}
	return r.evaluate(current, req.Target)
}

// AllowsFieldUpdate reports whether the caller may edit application fields
// outside the workflow. Owners may only edit drafts; staff may edit at any
// status as an operational override.
func AllowsFieldUpdate(current domain.ApplicationStatus, caller Caller) error {
	if caller.isStaff() {
		return nil
	}
	if !caller.IsOwner {
		return ErrNotAllowed
	}
	if current != domain.StatusDraft {
		return fmt.Errorf("%w: only draft applications can be edited", ErrBadState)
	}
	return nil
}

func stampForTarget(target domain.ApplicationStatus) Effect {
	switch target {
	case domain.StatusUnderReview:
		return EffectStampReviewed
	case domain.StatusApproved:
		return EffectStampApproved
	case domain.StatusRejected:
		return EffectStampRejected
	case domain.StatusBiometricsScheduled:
		return EffectStampBiometricsDate
	default:
		return ""
	}
}
