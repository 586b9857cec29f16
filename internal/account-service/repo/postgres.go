package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// Postgres implementa o ledger de contas de bookmaker em banco
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotFound          = errors.New("not found")
)

// Account é o modelo persistido de uma conta
type Account struct {
	ID           string
	Service      string
	Username     string
	Status       string
	BalanceCents int64
	AtRiskCents  int64
}

// List retorna contas filtrando opcionalmente por status e service
func (p *Postgres) List(ctx context.Context, status, service string) ([]Account, error) {
	const q = `
		SELECT id, service, username, status, balance_cents, at_risk_cents
		FROM accounts
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR service = $2)
		ORDER BY service, username;
	`
	rows, err := p.db.QueryContext(ctx, q, status, service)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Service, &a.Username, &a.Status, &a.BalanceCents, &a.AtRiskCents); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Create cadastra uma conta nova ATIVA com saldo zero
func (p *Postgres) Create(ctx context.Context, service, username string) (Account, error) {
	a := Account{
		ID:       uuid.NewString(),
		Service:  service,
		Username: username,
		Status:   "ACTIVE",
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO accounts (id, service, username, status, balance_cents, at_risk_cents, version)
		VALUES ($1,$2,$3,'ACTIVE',0,0,1)`,
		a.ID, a.Service, a.Username,
	)
	if err != nil {
		return Account{}, err
	}
	return a, nil
}

// Deposit incrementa o saldo da conta e registra a operação no ledger
// Garante lock pessimista na linha da conta
func (p *Postgres) Deposit(ctx context.Context, accountID string, amount int64, externalRef string) (newBalance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if err = lockAccount(ctx, tx, accountID); err != nil {
		return 0, err
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE accounts SET balance_cents = balance_cents + $1, version = version + 1 WHERE id=$2`,
		amount, accountID); err != nil {
		return 0, err
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO account_ledger(account_id, operation_type, amount_cents, description) VALUES($1,'CREDIT',$2,$3)`,
		accountID, amount, "deposit:"+externalRef); err != nil {
		return 0, err
	}

	if err = tx.QueryRowContext(ctx, `SELECT balance_cents FROM accounts WHERE id=$1`, accountID).Scan(&newBalance); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return newBalance, nil
}

// Reserve bloqueia saldo (at-risk) para uma colocação
// Garante idempotência por (account_id, external_ref)
func (p *Postgres) Reserve(ctx context.Context, accountID string, amount int64, externalRef string) (reservationID string, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if err = lockAccount(ctx, tx, accountID); err != nil {
		return "", err
	}

	// idempotência: reserva já existente pro mesmo external_ref
	var existing string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM account_reservations WHERE account_id=$1 AND external_ref=$2`,
		accountID, externalRef).Scan(&existing)
	if err == nil {
		return existing, tx.Commit()
	}
	if err != sql.ErrNoRows {
		return "", err
	}

	var balance, atRisk int64
	if err = tx.QueryRowContext(ctx,
		`SELECT balance_cents, at_risk_cents FROM accounts WHERE id=$1`,
		accountID).Scan(&balance, &atRisk); err != nil {
		return "", err
	}
	if balance-atRisk < amount {
		return "", ErrInsufficientFunds
	}

	reservationID = uuid.NewString()
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO account_reservations(id, account_id, amount_cents, external_ref, status) VALUES($1,$2,$3,$4,'PENDING')`,
		reservationID, accountID, amount, externalRef); err != nil {
		return "", err
	}
	if _, err = tx.ExecContext(ctx,
		`UPDATE accounts SET at_risk_cents = at_risk_cents + $1, version = version + 1 WHERE id=$2`,
		amount, accountID); err != nil {
		return "", err
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO account_ledger(account_id, operation_type, amount_cents, description) VALUES($1,'RESERVE',$2,$3)`,
		accountID, amount, "reserve:"+externalRef); err != nil {
		return "", err
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return reservationID, nil
}

// Settle efetiva uma reserva PENDING: o stake sai do saldo e do at-risk
func (p *Postgres) Settle(ctx context.Context, accountID, externalRef string) error {
	return p.finishReservation(ctx, accountID, externalRef, true)
}

// Release desfaz uma reserva PENDING, devolvendo o valor ao disponível
func (p *Postgres) Release(ctx context.Context, accountID, externalRef string) error {
	return p.finishReservation(ctx, accountID, externalRef, false)
}

func (p *Postgres) finishReservation(ctx context.Context, accountID, externalRef string, settle bool) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err = lockAccount(ctx, tx, accountID); err != nil {
		return err
	}

	var resID string
	var amount int64
	err = tx.QueryRowContext(ctx,
		`SELECT id, amount_cents FROM account_reservations WHERE account_id=$1 AND external_ref=$2 AND status='PENDING'`,
		accountID, externalRef).Scan(&resID, &amount)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	newStatus := "RELEASED"
	op := "RELEASE"
	if settle {
		newStatus = "SETTLED"
		op = "DEBIT"
		if _, err = tx.ExecContext(ctx,
			`UPDATE accounts SET balance_cents = balance_cents - $1, version = version + 1 WHERE id=$2`,
			amount, accountID); err != nil {
			return err
		}
	}
	if _, err = tx.ExecContext(ctx,
		`UPDATE accounts SET at_risk_cents = at_risk_cents - $1, version = version + 1 WHERE id=$2`,
		amount, accountID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx,
		`UPDATE account_reservations SET status=$1 WHERE id=$2`, newStatus, resID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO account_ledger(account_id, operation_type, amount_cents, description) VALUES($1,$2,$3,$4)`,
		accountID, op, amount, "settle:"+externalRef); err != nil {
		return err
	}

	return tx.Commit()
}

func lockAccount(ctx context.Context, tx *sql.Tx, accountID string) error {
	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM accounts WHERE id=$1 FOR UPDATE`, accountID).Scan(&id)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	return err
}
