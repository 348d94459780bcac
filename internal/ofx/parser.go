// Package ofx imports OFX/QFX bank and credit card statements as transactions.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/gofinances/gofinances/internal/catalog"
	"github.com/gofinances/gofinances/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// importNamespace scopes the ids derived from bank transaction ids, so that
// importing the same statement twice yields the same records.
var importNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://gofinances.local/ofx"))

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Options selects the categories imported records are filed under.
type Options struct {
	IncomeCategory  string
	ExpenseCategory string
}

// DefaultOptions files income as salary and expenses as purchases.
func DefaultOptions() Options {
	return Options{IncomeCategory: "salary", ExpenseCategory: "purchases"}
}

// Validate checks that both categories exist in the catalog.
func (o Options) Validate() error {
	for _, key := range []string{o.IncomeCategory, o.ExpenseCategory} {
		if !catalog.Has(key) {
			return fmt.Errorf("unknown category %q", key)
		}
	}
	return nil
}

// Result is what one statement file contained.
type Result struct {
	Accounts     []string
	Transactions []model.Transaction
	// Skipped counts zero-amount entries, which have no direction.
	Skipped int
}

// Parser implements OFX/QFX file parsing.
type Parser struct {
	opts Options
}

// NewParser creates a new OFX parser.
func NewParser(opts Options) *Parser {
	return &Parser{opts: opts}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be upper case.
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// Close SGML opening tags left without '>' at end of line.
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// ParseFile opens and parses the statement at path.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return p.Parse(ctx, f)
}

// Parse reads one OFX/QFX document.
func (p *Parser) Parse(ctx context.Context, reader io.Reader) (*Result, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	result := &Result{}
	accounts := make(map[string]struct{})

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			accountID := string(stmt.BankAcctFrom.AcctID)
			accounts[accountID] = struct{}{}
			if stmt.BankTranList != nil {
				p.convertAll(stmt.BankTranList.Transactions, accountID, result)
			}
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			accountID := string(stmt.CCAcctFrom.AcctID)
			accounts[accountID] = struct{}{}
			if stmt.BankTranList != nil {
				p.convertAll(stmt.BankTranList.Transactions, accountID, result)
			}
		}
	}

	for acct := range accounts {
		if acct != "" {
			result.Accounts = append(result.Accounts, acct)
		}
	}
	sort.Strings(result.Accounts)

	slog.InfoContext(ctx, "Parsed OFX file",
		"total_transactions", len(result.Transactions),
		"accounts", len(result.Accounts),
		"skipped", result.Skipped)

	return result, nil
}

func (p *Parser) convertAll(txns []ofxgo.Transaction, accountID string, result *Result) {
	for _, ofxTx := range txns {
		tx, ok := p.convertTransaction(ofxTx, accountID)
		if !ok {
			result.Skipped++
			continue
		}
		result.Transactions = append(result.Transactions, tx)
	}
}

// convertTransaction maps an OFX entry to a record. OFX signs debits negative;
// the record keeps the magnitude and moves the sign into Type.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, accountID string) (model.Transaction, bool) {
	amount, err := decimal.NewFromString(ofxTx.TrnAmt.FloatString(2))
	if err != nil || amount.IsZero() {
		return model.Transaction{}, false
	}

	typ := model.TypeNegative
	category := p.opts.ExpenseCategory
	if amount.IsPositive() {
		typ = model.TypePositive
		category = p.opts.IncomeCategory
	}

	title := p.extractMerchantName(ofxTx)
	if title == "" {
		title = fmt.Sprintf("%v", ofxTx.TrnType)
	}

	return model.Transaction{
		ID:          uuid.NewSHA1(importNamespace, []byte(accountID+":"+string(ofxTx.FiTID))).String(),
		Title:       title,
		Amount:      amount.Abs(),
		Type:        typ,
		CategoryKey: category,
		Date:        model.TruncateDate(ofxTx.DtPosted.Time.UTC()),
	}, true
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := string(tx.Name)
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}
	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
		"COMPRA CARTAO ",
		"COMPRA NO DEBITO ",
		"PIX ENVIADO ",
		"PIX RECEBIDO ",
	}

	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Drop a leading "MM/DD " date.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

// isGenericDescription checks if a transaction name is too generic.
func isGenericDescription(name string) bool {
	generic := []string{
		"DEBIT",
		"CREDIT",
		"PURCHASE",
		"PAYMENT",
		"POS TRANSACTION",
		"CARD PURCHASE",
		"PIX",
		"PAGAMENTO",
	}

	upperName := strings.ToUpper(strings.TrimSpace(name))
	for _, g := range generic {
		if upperName == g {
			return true
		}
	}
	return false
}
