package interpreter

import (
	"context"
	"math"

	"github.com/finwell-io/wellness-service/internal/models"
)

// The structured handlers. All are read-only and side-effect-free; every
// numeric output is rounded to two decimal places so re-invoking with
// unchanged data yields identical payloads.

func (i *Interpreter) handleRoster(ctx context.Context, _ request) (interface{}, error) {
	ids, err := i.store.CustomerIDs(ctx, rosterLimit)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return &models.CustomerListResult{
		Type:      models.ResultTypeCustomerList,
		Customers: ids,
		Count:     len(ids),
	}, nil
}

func (i *Interpreter) handleCustomerInfo(ctx context.Context, req request) (interface{}, error) {
	accounts, transactions, err := i.store.CustomerCounts(ctx, req.customerID)
	if err != nil {
		return nil, err
	}
	return &models.CustomerInfoResult{
		Type:             models.ResultTypeCustomerInfo,
		CustomerID:       req.customerID,
		AccountCount:     accounts,
		TransactionCount: transactions,
	}, nil
}

func (i *Interpreter) handleBalances(ctx context.Context, req request) (interface{}, error) {
	accounts, err := i.store.AccountsByCustomer(ctx, req.customerID)
	if err != nil {
		return nil, err
	}
	var assets, debts float64
	for _, a := range accounts {
		switch a.Type {
		case models.AccountTypeDepository:
			assets += a.CurrentBalance
		case models.AccountTypeCredit:
			debts += a.CurrentBalance
		}
	}
	assets = round2(assets)
	debts = round2(debts)
	return &models.BalancesResult{
		Type:        models.ResultTypeBalances,
		CustomerID:  req.customerID,
		TotalAssets: assets,
		TotalDebts:  debts,
		NetWorth:    round2(assets - debts),
	}, nil
}

func (i *Interpreter) handleDebtInfo(ctx context.Context, req request) (interface{}, error) {
	accounts, err := i.store.AccountsByCustomer(ctx, req.customerID)
	if err != nil {
		return nil, err
	}
	result := &models.DebtInfoResult{
		Type:       models.ResultTypeDebtInfo,
		CustomerID: req.customerID,
		Accounts:   []models.DebtAccount{},
	}
	var totalDebt, totalLimit float64
	for _, a := range accounts {
		if a.Type != models.AccountTypeCredit {
			continue
		}
		result.Accounts = append(result.Accounts, models.DebtAccount{
			AccountID:   a.AccountID,
			Name:        a.Name,
			Balance:     round2(a.CurrentBalance),
			Limit:       round2(a.CreditLimit),
			Utilization: utilization(a.CurrentBalance, a.CreditLimit),
		})
		totalDebt += a.CurrentBalance
		totalLimit += a.CreditLimit
	}
	result.TotalDebt = round2(totalDebt)
	result.TotalLimit = round2(totalLimit)
	result.OverallUtilization = utilization(totalDebt, totalLimit)
	return result, nil
}

func (i *Interpreter) handleOverdueInfo(ctx context.Context, req request) (interface{}, error) {
	accounts, err := i.store.OverdueAccounts(ctx, req.customerID)
	if err != nil {
		return nil, err
	}
	if accounts == nil {
		accounts = []models.OverdueAccount{}
	}
	for idx := range accounts {
		accounts[idx].Balance = round2(accounts[idx].Balance)
		accounts[idx].Limit = round2(accounts[idx].Limit)
		accounts[idx].MinimumPayment = round2(accounts[idx].MinimumPayment)
	}
	return &models.OverdueInfoResult{
		Type:       models.ResultTypeOverdueInfo,
		CustomerID: req.customerID,
		Accounts:   accounts,
		Count:      len(accounts),
	}, nil
}

func (i *Interpreter) handleOverdueCount(ctx context.Context, _ request) (interface{}, error) {
	count, err := i.store.OverdueCustomerCount(ctx)
	if err != nil {
		return nil, err
	}
	return &models.OverdueCountResult{
		Type:  models.ResultTypeOverdueCount,
		Count: count,
	}, nil
}

func (i *Interpreter) handleOverdueCustomers(ctx context.Context, _ request) (interface{}, error) {
	customers, err := i.store.OverdueCustomers(ctx)
	if err != nil {
		return nil, err
	}
	if customers == nil {
		customers = []models.OverdueCustomer{}
	}
	for idx := range customers {
		customers[idx].TotalBalance = round2(customers[idx].TotalBalance)
	}
	return &models.OverdueCustomersResult{
		Type:      models.ResultTypeOverdueCustomers,
		Customers: customers,
		Count:     len(customers),
	}, nil
}

func (i *Interpreter) handleTransactions(ctx context.Context, req request) (interface{}, error) {
	txs, err := i.store.RecentTransactions(ctx, req.customerID, transactionLimit)
	if err != nil {
		return nil, err
	}
	views := make([]models.TransactionView, 0, len(txs))
	for _, tx := range txs {
		name := tx.MerchantName
		if name == "" {
			name = tx.TransactionID
		}
		category := tx.CategoryPrimary
		if category == "" {
			category = tx.CategoryDetailed
		}
		if category == "" {
			category = "OTHER"
		}
		views = append(views, models.TransactionView{
			Date:     tx.Date.Format("2006-01-02"),
			Name:     name,
			Amount:   round2(tx.Amount),
			Category: category,
		})
	}
	return &models.TransactionsResult{
		Type:         models.ResultTypeTransactions,
		CustomerID:   req.customerID,
		Transactions: views,
		Count:        len(views),
	}, nil
}

func (i *Interpreter) handleSubscriptions(ctx context.Context, req request) (interface{}, error) {
	now := i.now()
	txs, err := i.store.TransactionsSince(ctx, req.customerID, now.AddDate(0, 0, -subscriptionWindow))
	if err != nil {
		return nil, err
	}
	detection := i.det.Detect(txs, now, subscriptionWindow)
	charges := detection.Charges
	if charges == nil {
		charges = []models.RecurringCharge{}
	}
	return &models.SubscriptionsResult{
		Type:               models.ResultTypeSubscriptions,
		CustomerID:         req.customerID,
		WindowDays:         subscriptionWindow,
		Subscriptions:      charges,
		SubscriptionCount:  detection.SubscriptionCount,
		ActiveCount:        detection.ActiveCount,
		TotalMonthlySpend:  detection.TotalMonthlySpend,
		ActiveMonthlySpend: detection.ActiveMonthlySpend,
		SubscriptionShare:  detection.SubscriptionShare,
	}, nil
}

// utilization guards against absent or zero limits; it never divides by zero.
func utilization(balance, limit float64) float64 {
	if limit <= 0 {
		return 0
	}
	return round2(balance / limit * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
