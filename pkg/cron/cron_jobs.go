package cron

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"splitjourney/internal/ledger"
	"splitjourney/internal/repositories/ledgerstore"
	"splitjourney/pkg/utils"
)

func StartCronJob(db *sql.DB) *cron.Cron {
	c := cron.New()

	// Runs daily at midnight — remind debtors of their outstanding payments
	_, err := c.AddFunc("0 0 * * *", func() {
		if err := SendReminderEmailsToDebtors(db); err != nil {
			utils.Logger.Errorf("Cron job failed to send reminder emails: %v", err)
		}
	})
	if err != nil {
		utils.Logger.Errorf("Failed to schedule debtor reminder job: %v", err)
	}

	// Runs daily at 8am — warn group owners whose budget crossed a threshold
	_, err = c.AddFunc("0 8 * * *", func() {
		if err := SendBudgetAlertEmails(db); err != nil {
			utils.Logger.Errorf("Cron job failed to send budget alerts: %v", err)
		}
	})
	if err != nil {
		utils.Logger.Errorf("Failed to schedule budget alert job: %v", err)
	}

	c.Start()
	utils.Logger.Info("Cron jobs started (debtor reminders daily at midnight, budget alerts daily at 8am)")
	return c
}

// -------------------------------------------------------------
// Send daily reminders to debtors (email sends run concurrently)
// -------------------------------------------------------------
//
// Reminders follow the simplified settlement plan, so each debtor gets one
// email per suggested payment rather than one per open expense. Only
// members linked to a registered user have an email to send to.
func SendReminderEmailsToDebtors(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()

	groupIDs, groupNames, err := listGroups(ctx, db)
	if err != nil {
		return err
	}

	store := ledgerstore.New(db)
	svc := ledger.NewService(store)

	var wg sync.WaitGroup
	errChan := make(chan error, 10)

	for i, groupID := range groupIDs {
		plan, err := svc.SettlementPlan(ctx, groupID)
		if err != nil {
			utils.Logger.Errorf("Failed to compute settlement plan for group %d: %v", groupID, err)
			continue
		}

		for _, transfer := range plan {
			var email, memberName sql.NullString
			err := db.QueryRowContext(ctx, `
				SELECT u.email, gm.member_name
				FROM group_members gm
				LEFT JOIN users u ON gm.user_id = u.id
				WHERE gm.id = ?`, transfer.PayerID).Scan(&email, &memberName)
			if err != nil {
				utils.Logger.Errorf("Failed to look up member %d: %v", transfer.PayerID, err)
				continue
			}
			if !email.Valid {
				continue
			}

			var creditorName string
			err = db.QueryRowContext(ctx,
				"SELECT member_name FROM group_members WHERE id = ?", transfer.ReceiverID).Scan(&creditorName)
			if err != nil {
				utils.Logger.Errorf("Failed to look up member %d: %v", transfer.ReceiverID, err)
				continue
			}

			wg.Add(1)
			go func(to, name, amount, creditor, group string) {
				defer wg.Done()

				if err := utils.SendDebtorReminderEmail(to, name, amount, creditor, group); err != nil {
					errChan <- fmt.Errorf("failed to send reminder email to %s: %v", to, err)
					return
				}
				utils.Logger.Infof("Sent reminder to %s (%s) — %s owed to %s in '%s'",
					name, to, amount, creditor, group)
			}(email.String, memberName.String, transfer.Amount.StringFixed(2), creditorName, groupNames[i])
		}
	}

	wg.Wait()
	close(errChan)

	for e := range errChan {
		utils.Logger.Error(e)
	}

	utils.Logger.Info("Finished sending debtor reminder emails")
	return nil
}

// -------------------------------------------------------------
// Send budget alert emails to group owners
// -------------------------------------------------------------
func SendBudgetAlertEmails(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()

	rows, err := db.QueryContext(ctx, `
		SELECT g.id, g.name, g.budget_amount, u.email, u.username
		FROM `+"`groups`"+` g
		JOIN users u ON g.created_by = u.id
		WHERE g.budget_amount IS NOT NULL`)
	if err != nil {
		return err
	}
	defer rows.Close()

	type budgetedGroup struct {
		id               int
		name             string
		budget           string
		email, ownerName string
	}

	var groups []budgetedGroup
	for rows.Next() {
		var g budgetedGroup
		if err := rows.Scan(&g.id, &g.name, &g.budget, &g.email, &g.ownerName); err != nil {
			utils.Logger.Errorf("Failed to scan budgeted group: %v", err)
			continue
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	svc := ledger.NewService(ledgerstore.New(db))

	var wg sync.WaitGroup
	errChan := make(chan error, 10)

	for _, g := range groups {
		status, err := svc.BudgetStatus(ctx, g.id)
		if err != nil {
			utils.Logger.Errorf("Failed to compute budget status for group %d: %v", g.id, err)
			continue
		}
		if len(status.Alerts) == 0 {
			continue
		}

		wg.Add(1)
		go func(g budgetedGroup, alert, spent string) {
			defer wg.Done()

			if err := utils.SendBudgetAlertEmail(g.email, g.ownerName, g.name, alert, spent, g.budget); err != nil {
				errChan <- fmt.Errorf("failed to send budget alert to %s: %v", g.email, err)
				return
			}
			utils.Logger.Infof("Sent budget alert for '%s' to %s: %s", g.name, g.email, alert)
		}(g, status.Alerts[0], status.TotalSpent.StringFixed(2))
	}

	wg.Wait()
	close(errChan)

	for e := range errChan {
		utils.Logger.Error(e)
	}

	utils.Logger.Info("Finished sending budget alert emails")
	return nil
}

func listGroups(ctx context.Context, db *sql.DB) ([]int, []string, error) {
	rows, err := db.QueryContext(ctx, "SELECT id, name FROM `groups`")
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var ids []int
	var names []string
	for rows.Next() {
		var id int
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, nil, err
		}
		ids = append(ids, id)
		names = append(names, name)
	}
	return ids, names, rows.Err()
}
