package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kudiapp/kudi-backend/internal/domain"
	"github.com/kudiapp/kudi-backend/internal/websocket"
)

// BabyStepService recalculates the seven-step debt payoff progression from
// live account and transaction state. Steps 1-3 are derived, steps 4-7 are
// manual flags, and the stored record is only ever a cache.
type BabyStepService struct {
	store     domain.TxManager
	calc      *CalculationService
	publisher websocket.EventPublisher
}

// NewBabyStepService creates a new BabyStepService
func NewBabyStepService(store domain.TxManager, calc *CalculationService, publisher websocket.EventPublisher) *BabyStepService {
	return &BabyStepService{store: store, calc: calc, publisher: publisher}
}

// GetProgress returns freshly recalculated progress for the user
func (s *BabyStepService) GetProgress(ctx context.Context, userID uuid.UUID) (*domain.Progress, error) {
	return s.Recalculate(ctx, userID)
}

// Recalculate rebuilds derived step state and persists the result. It is safe
// to run at any time and always converges on the same answer for the same
// ledger state.
func (s *BabyStepService) Recalculate(ctx context.Context, userID uuid.UUID) (*domain.Progress, error) {
	repos := s.store.Repos()

	progress, err := repos.Progress.GetByUser(ctx, userID)
	if err != nil {
		if !domain.IsNotFound(err) {
			return nil, err
		}
		progress = domain.NewProgress(userID)
	}

	var accounts []*domain.Account
	var avgExpense int64
	now := time.Now().UTC()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accounts, err = repos.Accounts.GetAllByUser(gctx, userID, false)
		return err
	})
	g.Go(func() error {
		var err error
		avgExpense, err = s.calc.GetTrailingAverageExpense(gctx, userID, progress.Step3.MonthsOfExpenses, now)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	liquid := liquidAssets(accounts)

	s.recalcStep1(progress, liquid, now)
	s.recalcStep2(progress, accounts, now)
	s.recalcStep3(progress, liquid, avgExpense, now)
	progress.CurrentStep = currentStep(progress)
	progress.LastCalculated = now

	saved, err := repos.Progress.Save(ctx, progress)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(userID, websocket.ProgressUpdated(saved))
	return saved, nil
}

// liquidAssets sums cash, bank and savings balances
func liquidAssets(accounts []*domain.Account) int64 {
	var liquid int64
	for _, a := range accounts {
		if a.Type == domain.AccountTypeAsset && domain.LiquidSubtypes[a.Subtype] {
			liquid += a.Balance
		}
	}
	return liquid
}

// recalcStep1 tracks the starter emergency fund against liquid assets
func (s *BabyStepService) recalcStep1(progress *domain.Progress, liquid int64, now time.Time) {
	if progress.Step1.TargetAmount <= 0 {
		progress.Step1.TargetAmount = domain.DefaultStep1Target
	}
	progress.Step1.CurrentAmount = liquid
	completed := liquid >= progress.Step1.TargetAmount
	markCompletion(&progress.Step1.Completed, &progress.Step1.CompletedAt, completed, now)
}

// recalcStep2 rebuilds the debt snowball, smallest balance first. The original
// balance of a tracked debt is remembered across recalculations so paid-down
// progress stays visible.
func (s *BabyStepService) recalcStep2(progress *domain.Progress, accounts []*domain.Account, now time.Time) {
	originals := make(map[uuid.UUID]int64, len(progress.Step2.Debts))
	for _, d := range progress.Step2.Debts {
		originals[d.AccountID] = d.OriginalBalance
	}

	var debts []domain.DebtItem
	var totalRemaining int64
	for _, a := range accounts {
		if a.Type != domain.AccountTypeLiability {
			continue
		}
		original, tracked := originals[a.ID]
		if !tracked {
			// A loan created mid-payoff reports its real original amount,
			// not the balance it happened to have when first seen
			original = a.Balance
			if a.LoanDetails != nil && a.LoanDetails.OriginalAmount > 0 {
				original = a.LoanDetails.OriginalAmount
			}
		}
		if a.Balance == 0 && !tracked {
			continue
		}
		var minimumPayment int64
		if a.LoanDetails != nil {
			minimumPayment = a.LoanDetails.MinimumPayment
		}
		debts = append(debts, domain.DebtItem{
			AccountID:       a.ID,
			Name:            a.Name,
			OriginalBalance: original,
			CurrentBalance:  a.Balance,
			MinimumPayment:  minimumPayment,
			IsPaidOff:       a.Balance == 0,
		})
		totalRemaining += a.Balance
	}

	sort.SliceStable(debts, func(i, j int) bool {
		return debts[i].CurrentBalance < debts[j].CurrentBalance
	})
	for i := range debts {
		debts[i].Order = i + 1
	}

	progress.Step2.Debts = debts
	progress.Step2.TotalDebtRemaining = totalRemaining
	markCompletion(&progress.Step2.Completed, &progress.Step2.CompletedAt, totalRemaining == 0, now)
}

// recalcStep3 sizes the full emergency fund from trailing average expenses
func (s *BabyStepService) recalcStep3(progress *domain.Progress, liquid, avgMonthlyExpense int64, now time.Time) {
	if progress.Step3.MonthsOfExpenses == 0 {
		progress.Step3.MonthsOfExpenses = domain.DefaultMonthsOfExpenses
	}
	progress.Step3.TargetAmount = avgMonthlyExpense * int64(progress.Step3.MonthsOfExpenses)
	progress.Step3.CurrentAmount = liquid
	completed := progress.Step3.TargetAmount > 0 && liquid >= progress.Step3.TargetAmount
	markCompletion(&progress.Step3.Completed, &progress.Step3.CompletedAt, completed, now)
}

// markCompletion flips a completion flag, stamping the transition time and
// clearing it again if the step regresses.
func markCompletion(completed *bool, completedAt **time.Time, now bool, at time.Time) {
	if now && !*completed {
		*completed = true
		stamp := at
		*completedAt = &stamp
	} else if !now {
		*completed = false
		*completedAt = nil
	}
}

// currentStep is the lowest incomplete derived step, or the first manual step
// not yet marked active once steps 1-3 are done.
func currentStep(progress *domain.Progress) int {
	switch {
	case !progress.Step1.Completed:
		return 1
	case !progress.Step2.Completed:
		return 2
	case !progress.Step3.Completed:
		return 3
	case !progress.Step4Active:
		return 4
	case !progress.Step5Active:
		return 5
	case !progress.Step6Active:
		return 6
	}
	return 7
}

// SetStepActive toggles one of the manual steps 4-7
func (s *BabyStepService) SetStepActive(ctx context.Context, userID uuid.UUID, step int, active bool) (*domain.Progress, error) {
	if step < 4 || step > 7 {
		return nil, domain.ErrInvalidBabyStep
	}
	repos := s.store.Repos()
	progress, err := repos.Progress.GetByUser(ctx, userID)
	if err != nil {
		if !domain.IsNotFound(err) {
			return nil, err
		}
		progress = domain.NewProgress(userID)
	}
	switch step {
	case 4:
		progress.Step4Active = active
	case 5:
		progress.Step5Active = active
	case 6:
		progress.Step6Active = active
	case 7:
		progress.Step7Active = active
	}
	if _, err := repos.Progress.Save(ctx, progress); err != nil {
		return nil, err
	}
	return s.Recalculate(ctx, userID)
}

// SetMonthsOfExpenses adjusts the step 3 fund size within the allowed range
func (s *BabyStepService) SetMonthsOfExpenses(ctx context.Context, userID uuid.UUID, months int) (*domain.Progress, error) {
	if months < 3 || months > 12 {
		return nil, domain.ErrInvalidBabyStep
	}
	repos := s.store.Repos()
	progress, err := repos.Progress.GetByUser(ctx, userID)
	if err != nil {
		if !domain.IsNotFound(err) {
			return nil, err
		}
		progress = domain.NewProgress(userID)
	}
	progress.Step3.MonthsOfExpenses = months
	if _, err := repos.Progress.Save(ctx, progress); err != nil {
		return nil, err
	}
	return s.Recalculate(ctx, userID)
}

// GetSmallestDebt returns the next snowball target, the outstanding debt with
// the smallest current balance. Debt-free users get ErrNoOutstandingDebts.
func (s *BabyStepService) GetSmallestDebt(ctx context.Context, userID uuid.UUID) (*domain.DebtItem, error) {
	progress, err := s.Recalculate(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, d := range progress.Step2.Debts {
		if !d.IsPaidOff {
			debt := d
			return &debt, nil
		}
	}
	return nil, domain.ErrNoOutstandingDebts
}

// GetGazelleIntensity reports this month's unallocated cash flow and whether
// it should be thrown at the snowball.
func (s *BabyStepService) GetGazelleIntensity(ctx context.Context, userID uuid.UUID) (*domain.GazelleIntensity, error) {
	progress, err := s.Recalculate(ctx, userID)
	if err != nil {
		return nil, err
	}
	accounts, err := s.store.Repos().Accounts.GetAllByUser(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	flow, err := s.calc.GetMonthlyCashFlow(ctx, userID, now.Year(), now.Month())
	if err != nil {
		return nil, err
	}

	unallocated := flow.Net
	if unallocated < 0 {
		unallocated = 0
	}
	return &domain.GazelleIntensity{
		Unallocated:       unallocated,
		TotalLiquid:       liquidAssets(accounts),
		MonthlyIncome:     flow.Income,
		MonthlyExpense:    flow.Expense,
		ShouldThrowAtDebt: progress.CurrentStep == 2 && unallocated > 0,
	}, nil
}
