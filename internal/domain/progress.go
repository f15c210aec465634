package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultStep1Target is the starter emergency fund target in subunits
const DefaultStep1Target = 100000

// DefaultMonthsOfExpenses is the step 3 full emergency fund multiplier
const DefaultMonthsOfExpenses = 6

// DebtItem is one entry in the step 2 snowball, ranked smallest balance first
type DebtItem struct {
	AccountID       uuid.UUID `json:"accountId"`
	Name            string    `json:"name"`
	OriginalBalance int64     `json:"originalBalance"`
	CurrentBalance  int64     `json:"currentBalance"`
	MinimumPayment  int64     `json:"minimumPayment"`
	Order           int       `json:"order"`
	IsPaidOff       bool      `json:"isPaidOff"`
}

type StepTarget struct {
	TargetAmount  int64      `json:"targetAmount"`
	CurrentAmount int64      `json:"currentAmount"`
	Completed     bool       `json:"completed"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
}

type DebtSnowball struct {
	Debts              []DebtItem `json:"debts"`
	TotalDebtRemaining int64      `json:"totalDebtRemaining"`
	Completed          bool       `json:"completed"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`
}

type FullEmergencyFund struct {
	TargetAmount     int64      `json:"targetAmount"`
	MonthsOfExpenses int        `json:"monthsOfExpenses"`
	CurrentAmount    int64      `json:"currentAmount"`
	Completed        bool       `json:"completed"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
}

// Progress tracks the seven Baby Steps for one user. Steps 1-3 are recomputed
// from account and transaction state; steps 4-7 are manual flags. It is never
// a source of truth for money.
type Progress struct {
	UserID         uuid.UUID         `json:"userId"`
	CurrentStep    int               `json:"currentStep"`
	Step1          StepTarget        `json:"step1"`
	Step2          DebtSnowball      `json:"step2"`
	Step3          FullEmergencyFund `json:"step3"`
	Step4Active    bool              `json:"step4Active"`
	Step5Active    bool              `json:"step5Active"`
	Step6Active    bool              `json:"step6Active"`
	Step7Active    bool              `json:"step7Active"`
	LastCalculated time.Time         `json:"lastCalculated"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

// NewProgress returns the initial record for a user
func NewProgress(userID uuid.UUID) *Progress {
	return &Progress{
		UserID:      userID,
		CurrentStep: 1,
		Step1:       StepTarget{TargetAmount: DefaultStep1Target},
		Step3:       FullEmergencyFund{MonthsOfExpenses: DefaultMonthsOfExpenses},
	}
}

// GazelleIntensity is the purely informational monthly cash-flow snapshot
type GazelleIntensity struct {
	Unallocated       int64 `json:"unallocated"`
	TotalLiquid       int64 `json:"totalLiquid"`
	MonthlyIncome     int64 `json:"monthlyIncome"`
	MonthlyExpense    int64 `json:"monthlyExpense"`
	ShouldThrowAtDebt bool  `json:"shouldThrowAtDebt"`
}

type ProgressRepository interface {
	GetByUser(ctx context.Context, userID uuid.UUID) (*Progress, error)
	Save(ctx context.Context, progress *Progress) (*Progress, error)
}
