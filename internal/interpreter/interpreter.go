// Package interpreter turns free-text questions into structured query results.
package interpreter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/finwell-io/wellness-service/internal/detector"
	"github.com/finwell-io/wellness-service/internal/models"
	"github.com/finwell-io/wellness-service/internal/repository"
)

// Store is the read-only slice of the relational store the interpreter needs.
type Store interface {
	CustomerIDs(ctx context.Context, limit int) ([]string, error)
	CustomerCounts(ctx context.Context, customerID string) (accounts, transactions int, err error)
	AccountsByCustomer(ctx context.Context, customerID string) ([]models.Account, error)
	RecentTransactions(ctx context.Context, customerID string, limit int) ([]models.Transaction, error)
	TransactionsSince(ctx context.Context, customerID string, since time.Time) ([]models.Transaction, error)
	OverdueAccounts(ctx context.Context, customerID string) ([]models.OverdueAccount, error)
	OverdueCustomerCount(ctx context.Context) (int, error)
	OverdueCustomers(ctx context.Context) ([]models.OverdueCustomer, error)
}

// Generator is the optional AI-SQL fallback capability. A nil Generator means
// the fallback is disabled; the interpreter's control flow is identical either
// way, differing only in the final branch.
type Generator interface {
	ExecuteGeneratedQuery(ctx context.Context, query string) (*models.AIGeneratedResult, error)
}

const (
	rosterLimit          = 50
	transactionLimit     = 10
	subscriptionWindow   = 90
	exampleQuerySuffixes = `Try queries like: "list customers", "balance for CUST000001", ` +
		`"debt for CUST000002", "subscriptions for CUST000003", "transactions for CUST000004", ` +
		`"how many customers are overdue".`
)

// request is a parsed query: the raw text, its lowercase form and the
// resolved customer identifier (empty when none was found).
type request struct {
	raw        string
	text       string
	customerID string
}

func (r request) hasID() bool { return r.customerID != "" }

// intentRule pairs a predicate with a handler. Rules are evaluated in slice
// order and the first match wins, so more specific rules come first.
type intentRule struct {
	name  string
	match func(request) bool
	run   func(context.Context, request) (interface{}, error)
}

// Interpreter classifies free-text queries and dispatches them to structured
// handlers, falling back to AI-generated SQL when nothing matches.
type Interpreter struct {
	store      Store
	det        *detector.Detector
	gen        Generator
	genTimeout time.Duration
	log        *logrus.Logger
	now        func() time.Time
	rules      []intentRule
}

// New creates an interpreter. gen may be nil to disable the AI-SQL fallback;
// genTimeout bounds each fallback call when it is configured.
func New(store Store, det *detector.Detector, gen Generator, genTimeout time.Duration, log *logrus.Logger) *Interpreter {
	i := &Interpreter{
		store:      store,
		det:        det,
		gen:        gen,
		genTimeout: genTimeout,
		log:        log,
		now:        time.Now,
	}
	i.rules = []intentRule{
		// Roster queries short-circuit before any identifier requirement.
		{"customer_list", func(r request) bool {
			return strings.Contains(r.text, "customer") &&
				containsAny(r.text, "list", "show", "all")
		}, i.handleRoster},

		// With an identifier, combined intents in fixed priority order.
		// Overdue/outstanding phrasing beats the generic balance keyword.
		{"overdue_info", func(r request) bool {
			return r.hasID() && strings.Contains(r.text, "overdue")
		}, i.handleOverdueInfo},
		{"debt_info", func(r request) bool {
			return r.hasID() && strings.Contains(r.text, "outstanding")
		}, i.handleDebtInfo},
		{"balances", func(r request) bool {
			return r.hasID() && strings.Contains(r.text, "balance")
		}, i.handleBalances},
		{"debt_info", func(r request) bool {
			return r.hasID() && strings.Contains(r.text, "debt")
		}, i.handleDebtInfo},
		{"subscriptions", func(r request) bool {
			return r.hasID() && containsAny(r.text, "subscription", "recurring")
		}, i.handleSubscriptions},
		{"transactions", func(r request) bool {
			return r.hasID() && strings.Contains(r.text, "transaction")
		}, i.handleTransactions},
		{"customer_info", func(r request) bool {
			return r.hasID()
		}, i.handleCustomerInfo},

		// Without an identifier, only aggregate overdue intents resolve.
		{"overdue_count", func(r request) bool {
			return strings.Contains(r.text, "overdue") &&
				containsAny(r.text, "how many", "count", "number")
		}, i.handleOverdueCount},
		{"overdue_customers", func(r request) bool {
			return strings.Contains(r.text, "overdue")
		}, i.handleOverdueCustomers},
	}
	return i
}

// Interpret resolves a free-text query into the standard envelope. The only
// errors returned as Go errors are store-connectivity faults; every other
// failure is reported inside the envelope.
func (i *Interpreter) Interpret(ctx context.Context, query, contextCustomerID string) (*models.QueryResult, error) {
	req := request{raw: query, text: strings.ToLower(query)}
	req.customerID = ExtractCustomerID(query)
	if req.customerID == "" && contextCustomerID != "" {
		// Context-supplied identifier applies only when the text has none.
		if id := ExtractCustomerID(contextCustomerID); id != "" {
			req.customerID = id
		} else {
			req.customerID = contextCustomerID
		}
	}

	for _, rule := range i.rules {
		if !rule.match(req) {
			continue
		}
		i.log.WithFields(logrus.Fields{
			"intent":      rule.name,
			"customer_id": req.customerID,
		}).Debug("query matched intent rule")

		payload, err := i.runRule(ctx, rule, req)
		if err != nil {
			if errors.Is(err, repository.ErrStore) {
				return nil, err
			}
			return models.NewFailure(query, fmt.Sprintf("%s handler failed: %v", rule.name, err)), nil
		}
		return models.NewSuccess(query, payload), nil
	}

	return i.fallback(ctx, query)
}

// runRule executes a handler, converting a panic into a reportable error so
// internal failures never escape the envelope.
func (i *Interpreter) runRule(ctx context.Context, rule intentRule, req request) (payload interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal failure: %v", r)
		}
	}()
	return rule.run(ctx, req)
}

// fallback delegates to the AI-SQL generator when one is configured,
// otherwise returns the standard could-not-understand error.
func (i *Interpreter) fallback(ctx context.Context, query string) (*models.QueryResult, error) {
	if i.gen == nil {
		return models.NewFailure(query, "Could not understand the query. "+exampleQuerySuffixes), nil
	}

	if i.genTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.genTimeout)
		defer cancel()
	}

	i.log.WithField("query", query).Info("delegating query to AI SQL generator")
	result, err := i.gen.ExecuteGeneratedQuery(ctx, query)
	if err != nil {
		return models.NewFailure(query,
			fmt.Sprintf("AI SQL generation failed: %v. %s", err, exampleQuerySuffixes)), nil
	}
	return models.NewSuccess(query, result), nil
}

func containsAny(text string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
