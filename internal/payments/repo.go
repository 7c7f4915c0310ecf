package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-pethotel-pos/internal/apperr"
	"github.com/ariefcatur/go-pethotel-pos/internal/pos"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrAlreadyExists = errors.New("payment already exists")

// Repo is the sales ledger. Rows are written once per committed checkout and never updated.
type Repo struct{ DB *pgxpool.Pool }

const selectColumns = `transaction_id, user_id, payment_date, method,
	amount_paid::text, subtotal::text, discount::text, sales_tax::text,
	point_discount::text, total_price::text, change_given::text, line_items, member`

func (r *Repo) Insert(ctx context.Context, p pos.Payment) error {
	items, err := json.Marshal(p.LineItems)
	if err != nil {
		return fmt.Errorf("encode line items: %w", err)
	}
	var member []byte
	if p.Member != nil {
		if member, err = json.Marshal(p.Member); err != nil {
			return fmt.Errorf("encode member: %w", err)
		}
	}
	method := p.Method
	if method == "" {
		method = pos.MethodCash
	}

	_, err = r.DB.Exec(ctx, `
		INSERT INTO payments(transaction_id, user_id, payment_date, method,
			amount_paid, subtotal, discount, sales_tax, point_discount, total_price, change_given,
			line_items, member)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		p.TransactionID, p.UserID, p.PaymentDate, method,
		p.Tendered, p.Subtotal, p.Discount, p.SalesTax, p.PointDiscount, p.TotalPrice, p.ChangeGiven,
		items, member,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, transactionID string) (pos.Payment, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+selectColumns+` FROM payments WHERE transaction_id=$1`, transactionID)
	p, err := scanPayment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return pos.Payment{}, apperr.ErrPaymentNotFound
	}
	return p, err
}

// List returns the newest payments first. An empty userID lists every user.
func (r *Repo) List(ctx context.Context, userID string, limit int) ([]pos.Payment, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.DB.Query(ctx, `SELECT `+selectColumns+` FROM payments
		WHERE ($1 = '' OR user_id = $1)
		ORDER BY payment_date DESC, transaction_id DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []pos.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPayment(row pgx.Row) (pos.Payment, error) {
	var (
		p                                           pos.Payment
		paid, sub, disc, tax, ptDisc, total, change string
		items, member                               []byte
		paymentDate                                 time.Time
	)
	if err := row.Scan(&p.TransactionID, &p.UserID, &paymentDate, &p.Method,
		&paid, &sub, &disc, &tax, &ptDisc, &total, &change, &items, &member); err != nil {
		return pos.Payment{}, err
	}
	p.PaymentDate = paymentDate.UTC()

	amounts := []struct {
		dst *decimal.Decimal
		src string
	}{
		{&p.Tendered, paid}, {&p.Subtotal, sub}, {&p.Discount, disc}, {&p.SalesTax, tax},
		{&p.PointDiscount, ptDisc}, {&p.TotalPrice, total}, {&p.ChangeGiven, change},
	}
	for _, a := range amounts {
		d, err := decimal.NewFromString(a.src)
		if err != nil {
			return pos.Payment{}, fmt.Errorf("decode amount %q: %w", a.src, err)
		}
		*a.dst = d
	}

	if err := json.Unmarshal(items, &p.LineItems); err != nil {
		return pos.Payment{}, fmt.Errorf("decode line items: %w", err)
	}
	if len(member) > 0 {
		var m pos.MemberSnapshot
		if err := json.Unmarshal(member, &m); err != nil {
			return pos.Payment{}, fmt.Errorf("decode member: %w", err)
		}
		p.Member = &m
	}
	return p, nil
}
