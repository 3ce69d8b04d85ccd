package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Дефолты PolicyConfig. Материализуются лениво при первом обращении
// (get-or-create), поэтому PolicyNotFound наружу не выходит никогда.
var (
	DefaultAutoApproveLimit    = decimal.RequireFromString("5.00")
	DefaultDailySpendingLimit  = decimal.RequireFromString("100.00")
	DefaultWeeklySpendingLimit = decimal.RequireFromString("500.00")
	DefaultLowBalanceThreshold = decimal.RequireFromString("10.00")
)

// PolicyConfig — политика расходов одного пользователя.
// Все лимиты неотрицательны. daily <= weekly НЕ инвариант системы:
// пользователь вправе сконфигурировать несогласованные значения.
type PolicyConfig struct {
	UserID                   string          `json:"user_id"`
	AutoApproveLimit         decimal.Decimal `json:"auto_approve_limit"`
	DailySpendingLimit       decimal.Decimal `json:"daily_spending_limit"`
	WeeklySpendingLimit      decimal.Decimal `json:"weekly_spending_limit"`
	LowBalanceAlertThreshold decimal.Decimal `json:"low_balance_alert_threshold"`
	AutoSavePercentage       int             `json:"auto_save_percentage"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultPolicyConfig возвращает политику с дефолтной таблицей значений.
func DefaultPolicyConfig(userID string) PolicyConfig {
	return PolicyConfig{
		UserID:                   userID,
		AutoApproveLimit:         DefaultAutoApproveLimit,
		DailySpendingLimit:       DefaultDailySpendingLimit,
		WeeklySpendingLimit:      DefaultWeeklySpendingLimit,
		LowBalanceAlertThreshold: DefaultLowBalanceThreshold,
		AutoSavePercentage:       0,
	}
}

// PolicyUpdate — частичное обновление политики. nil-поле означает "не трогать".
type PolicyUpdate struct {
	AutoApproveLimit         *decimal.Decimal `json:"auto_approve_limit,omitempty"`
	DailySpendingLimit       *decimal.Decimal `json:"daily_spending_limit,omitempty"`
	WeeklySpendingLimit      *decimal.Decimal `json:"weekly_spending_limit,omitempty"`
	LowBalanceAlertThreshold *decimal.Decimal `json:"low_balance_alert_threshold,omitempty"`
	AutoSavePercentage       *int             `json:"auto_save_percentage,omitempty"`
}

// Validate отклоняет отрицательные лимиты и проценты вне [0,100].
func (u PolicyUpdate) Validate() error {
	for _, v := range []*decimal.Decimal{
		u.AutoApproveLimit, u.DailySpendingLimit, u.WeeklySpendingLimit, u.LowBalanceAlertThreshold,
	} {
		if v != nil && v.IsNegative() {
			return ErrConfigurationInconsistent
		}
	}
	if u.AutoSavePercentage != nil && (*u.AutoSavePercentage < 0 || *u.AutoSavePercentage > 100) {
		return ErrConfigurationInconsistent
	}
	return nil
}
