package coverage

import (
	"context"
	"sort"
	"strings"
)

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// Service は補償解決・コンプライアンス監査・集計レポートをまとめます。
// すべて読み取り専用で、呼び出し間で状態を持ちません。
type Service struct {
	repo Repository
	tx   TransactionManager
}

// UseCase は補償評価ユースケースの公開インターフェースです。
type UseCase interface {
	ResolveCoverage(ctx context.Context, in ResolveCoverageInput) ([]Entry, error)
	FindNonCompliant(ctx context.Context, in FindNonCompliantInput) ([]NonCompliantEmployee, error)
	CategoryReport(ctx context.Context) ([]CategoryCount, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, tx TransactionManager) *Service {
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, tx: tx}
}

// ResolveCoverageInput は補償解決時の入力です。
type ResolveCoverageInput struct {
	EmployeeID int64
}

// FindNonCompliantInput はコンプライアンス監査時の入力です。
type FindNonCompliantInput struct {
	CategoryName  string
	MinimumAmount float64
}

// ResolveCoverage は従業員の割当プランを横断して実効補償を解決します。
// 割当のない従業員は空の結果になり、エラーにはなりません。従業員自体が
// 存在しない場合のみエラーです。
func (s *Service) ResolveCoverage(ctx context.Context, in ResolveCoverageInput) ([]Entry, error) {
	if in.EmployeeID <= 0 {
		return nil, ErrInvalidID
	}

	var entries []Entry
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.FindEmployee(txCtx, in.EmployeeID); err != nil {
			return err
		}

		rows, err := s.repo.ListAssignedTiers(txCtx, in.EmployeeID)
		if err != nil {
			return err
		}

		entries = mergeEntries(rows)
		return nil
	}); err != nil {
		return nil, err
	}

	return entries, nil
}

// FindNonCompliant は全従業員の実効補償を指定区分について解決し、規制下限を
// 満たさない従業員を報告します。補償がまったくない従業員も、不足とは区別
// した上で必ず報告に含めます。結果は従業員ID昇順です。
func (s *Service) FindNonCompliant(ctx context.Context, in FindNonCompliantInput) ([]NonCompliantEmployee, error) {
	name := strings.TrimSpace(in.CategoryName)
	if name == "" {
		return nil, ErrInvalidCategoryName
	}
	if in.MinimumAmount < 0 {
		return nil, ErrInvalidMinimum
	}

	var violators []NonCompliantEmployee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		category, err := s.repo.FindCategoryByName(txCtx, name)
		if err != nil {
			return err
		}

		employees, err := s.repo.ListEmployees(txCtx)
		if err != nil {
			return err
		}

		violators = make([]NonCompliantEmployee, 0)
		for _, emp := range employees {
			rows, err := s.repo.ListAssignedTiers(txCtx, emp.ID)
			if err != nil {
				return err
			}

			resolved, ok := resolveCategory(rows, category.ID)
			switch {
			case !ok:
				violators = append(violators, NonCompliantEmployee{
					EmployeeID:   emp.ID,
					EmployeeName: emp.Name,
					Reason:       ReasonNoCoverage,
				})
			case resolved.SumInsured < in.MinimumAmount:
				amount := resolved.SumInsured
				violators = append(violators, NonCompliantEmployee{
					EmployeeID:   emp.ID,
					EmployeeName: emp.Name,
					Coverage:     &amount,
					Reason:       ReasonBelowMinimum,
				})
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	sort.Slice(violators, func(i, j int) bool {
		return violators[i].EmployeeID < violators[j].EmployeeID
	})

	return violators, nil
}

// CategoryReport はカタログ全体の保険金額件数を区分ごとに集計します。
func (s *Service) CategoryReport(ctx context.Context) ([]CategoryCount, error) {
	var counts []CategoryCount
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.CountTiersByCategory(txCtx)
		if err != nil {
			return err
		}
		counts = result
		return nil
	}); err != nil {
		return nil, err
	}

	sort.Slice(counts, func(i, j int) bool {
		return counts[i].CategoryName < counts[j].CategoryName
	})

	return counts, nil
}

// mergeEntries は区分ごとに betterTier で勝者を選び、区分名昇順の補償一覧に
// まとめます。
func mergeEntries(rows []TierRow) []Entry {
	best := make(map[int64]TierRow, len(rows))
	for _, row := range rows {
		current, ok := best[row.CategoryID]
		if !ok {
			best[row.CategoryID] = row
			continue
		}
		best[row.CategoryID] = betterTier(current, row)
	}

	entries := make([]Entry, 0, len(best))
	for _, row := range best {
		entries = append(entries, Entry{
			CategoryName: row.CategoryName,
			SumInsured:   row.SumInsured,
			SourcePlanID: row.PlanID,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CategoryName < entries[j].CategoryName
	})

	return entries
}

// resolveCategory は一つの区分に限定した補償解決です。割当プランのどれも
// 区分を宣言していない場合は ok=false を返します。
func resolveCategory(rows []TierRow, categoryID int64) (TierRow, bool) {
	var best TierRow
	found := false
	for _, row := range rows {
		if row.CategoryID != categoryID {
			continue
		}
		if !found {
			best = row
			found = true
			continue
		}
		best = betterTier(best, row)
	}
	return best, found
}

// betterTier は同一区分で競合する保険金額の採用規則です。保険金額の大きい方
// (従業員に有利な方)が勝ち、同額の場合はプランIDの小さい方を採用します。
// 反復順序に依存しない決定的な規則としてここに集約しています。
func betterTier(current, candidate TierRow) TierRow {
	if candidate.SumInsured > current.SumInsured {
		return candidate
	}
	if candidate.SumInsured == current.SumInsured && candidate.PlanID < current.PlanID {
		return candidate
	}
	return current
}
