package services

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"fincoach/internal/models"

	"github.com/shopspring/decimal"
)

var (
	// Permissive money token, with or without a dollar sign
	cellAmountPattern    = regexp.MustCompile(`\$?\s*([\d,]+\.?\d*)`)
	tabularAmountPattern = regexp.MustCompile(`\$?([\d,]+\.?\d*)`)
	dollarAmountPattern  = regexp.MustCompile(`\$\s*([\d,]+\.?\d*)`)

	// Statement ledger line: DATE  DESCRIPTION  SIGNED-AMOUNT
	statementLinePattern = regexp.MustCompile(`(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})\s+(.+?)\s+([-+]?\$?\d+[,\d]*\.?\d*)`)

	tabularHeaderPattern = regexp.MustCompile(`(?i)(housing|rent|food|bill|personal|transport|entertain|utilit|dining|grocer)`)
	columnSplitPattern   = regexp.MustCompile(`\s{2,}`)
	labelPattern         = regexp.MustCompile(`^([A-Za-z]+)`)
	strippedAmountsRe    = regexp.MustCompile(`\$[\d,.]+`)
)

// Aggregate or header rows inside tables never become transactions
var tableSkipWords = []string{"total", "month", "average", "header"}

// Lines skipped by the dollar-amount fallback
var textSkipWords = []string{"total", "month", "category", "header", "page"}

// Column header variants recognized by the structured-table path
var transactionHeaders = map[string][]string{
	"date":        {"date", "transaction date", "posting date", "trans date", "dt"},
	"description": {"description", "desc", "memo", "merchant", "details", "transaction details"},
	"debit":       {"debit", "withdrawal", "withdrawals", "payment", "spent", "charge"},
	"credit":      {"credit", "deposit", "deposits", "income", "received"},
	"amount":      {"amount", "amt", "transaction amount"},
	"balance":     {"balance", "running balance", "closing balance"},
}

// Date layouts accepted during normalization, tried in order
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"01/02/06",
	"02/01/2006",
	"02/01/06",
	"01-02-2006",
	"01-02-06",
	"Jan 2, 2006",
	"January 2, 2006",
	"2-Jan-2006",
	"20060102",
}

type extractStrategy struct {
	name string
	run  func(text string, tables [][][]string) []models.RawTransaction
}

type extractorService struct {
	logger     *slog.Logger
	recorder   MetricsRecorderInterface
	now        func() time.Time
	strategies []extractStrategy
}

// NewExtractorService creates a new ExtractorServiceInterface instance
func NewExtractorService(logger *slog.Logger, recorder MetricsRecorderInterface) ExtractorServiceInterface {
	if logger == nil {
		logger = slog.Default()
	}
	s := &extractorService{
		logger:   logger,
		recorder: recorder,
		now:      time.Now,
	}
	s.strategies = []extractStrategy{
		{name: "tables", run: s.parseFromTables},
		{name: "statement_lines", run: s.parseStatementLines},
		{name: "tabular_text", run: s.parseTabularText},
		{name: "dollar_amounts", run: s.parseDollarAmounts},
	}
	return s
}

// Extract runs the strategy cascade. The first strategy producing at least
// one transaction wins; results are never merged across strategies.
func (s *extractorService) Extract(text string, tables [][][]string) []models.RawTransaction {
	for _, strategy := range s.strategies {
		txns := strategy.run(text, tables)
		if len(txns) > 0 {
			s.logger.Info("parsed transactions",
				"strategy", strategy.name,
				"count", len(txns))
			s.record(strategy.name)
			return txns
		}
	}

	s.logger.Warn("could not parse transactions, emitting summary entry")
	s.record("fallback")
	return []models.RawTransaction{{
		Date:        s.now(),
		Description: models.FallbackDescription,
		Amount:      models.FallbackAmount,
	}}
}

func (s *extractorService) record(strategy string) {
	if s.recorder != nil {
		s.recorder.IncrementCounter("extraction.strategy", map[string]string{"strategy": strategy})
	}
}

// parseFromTables handles table grids. Tables whose header names a date
// column are parsed as structured ledgers; anything else is treated as an
// aggregate budget grid whose cells are expense amounts.
func (s *extractorService) parseFromTables(_ string, tables [][][]string) []models.RawTransaction {
	var txns []models.RawTransaction

	for _, table := range tables {
		if len(table) < 2 {
			continue
		}

		header := make([]string, len(table[0]))
		for i, cell := range table[0] {
			header[i] = strings.ToLower(strings.TrimSpace(cell))
		}

		if mapping := mapColumns(header); mapping["date"] >= 0 {
			txns = append(txns, s.ExtractFromStructuredTable(table)...)
			continue
		}

		for _, row := range table[1:] {
			cells := make([]string, len(row))
			empty := true
			for i, cell := range row {
				cells[i] = strings.TrimSpace(cell)
				if cells[i] != "" {
					empty = false
				}
			}
			if empty {
				continue
			}

			rowText := strings.ToLower(strings.Join(cells, " "))
			if containsAny(rowText, tableSkipWords) {
				continue
			}

			label := cells[0]
			for colIdx, cell := range cells[1:] {
				amount, ok := extractCellAmount(cell)
				if !ok || !amount.IsPositive() {
					continue
				}
				desc := label
				if hint := headerAt(header, colIdx+1); hint != "" {
					desc = strings.Trim(label+" - "+hint, " -")
				}
				txns = append(txns, models.RawTransaction{
					Date:        s.now(),
					Description: desc,
					Amount:      amount.Abs().Neg(),
				})
			}
		}
	}

	return txns
}

// ExtractFromStructuredTable parses a ledger table with named columns,
// handling split debit/credit columns and accounting-style amounts
func (s *extractorService) ExtractFromStructuredTable(table [][]string) []models.RawTransaction {
	if len(table) < 2 {
		return nil
	}

	header := make([]string, len(table[0]))
	for i, cell := range table[0] {
		header[i] = strings.ToLower(strings.TrimSpace(cell))
	}
	mapping := mapColumns(header)
	if mapping["date"] < 0 {
		return nil
	}

	var txns []models.RawTransaction
	for _, row := range table[1:] {
		if len(row) != len(header) {
			continue
		}

		date, ok := s.normalizeDate(cellAt(row, mapping["date"]))
		if !ok {
			continue
		}

		description := strings.TrimSpace(cellAt(row, mapping["description"]))
		if description == "" {
			description = "Unknown"
		}

		amount, ok := resolveRowAmount(
			cellAt(row, mapping["debit"]),
			cellAt(row, mapping["credit"]),
			cellAt(row, mapping["amount"]),
		)
		if !ok {
			continue
		}

		txns = append(txns, models.RawTransaction{
			Date:        date,
			Description: description,
			Amount:      amount,
		})
	}
	return txns
}

// parseStatementLines scans for DATE DESCRIPTION AMOUNT ledger lines with
// signed amounts, the shape of a typical printed statement
func (s *extractorService) parseStatementLines(text string, _ [][][]string) []models.RawTransaction {
	var txns []models.RawTransaction

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		m := statementLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		dateStr, description, amountStr := m[1], m[2], m[3]

		// Date ranges like "Period: 03/01/2024 - 03/31/2024" match the
		// pattern with a letterless description; they are not ledger lines
		if !containsLetter(description) {
			continue
		}

		amount, ok := parseSignedAmount(amountStr)
		if !ok || amount.IsZero() {
			continue
		}
		if strings.Contains(amountStr, "-") || strings.Contains(strings.ToLower(line), "debit") {
			amount = amount.Abs().Neg()
		} else {
			amount = amount.Abs()
		}

		date, ok := s.normalizeDate(dateStr)
		if !ok {
			date = s.now()
		}

		txns = append(txns, models.RawTransaction{
			Date:        date,
			Description: strings.TrimSpace(description),
			Amount:      amount,
		})
	}

	return txns
}

// parseTabularText handles budget-style rows like
// "Jan $800.00 $210.00 $400.00" under a category header line
func (s *extractorService) parseTabularText(text string, _ [][][]string) []models.RawTransaction {
	var txns []models.RawTransaction
	var categories []string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if tabularHeaderPattern.MatchString(line) {
			categories = categories[:0]
			for _, part := range columnSplitPattern.Split(line, -1) {
				part = strings.TrimSpace(part)
				if part != "" && !isAllDigits(part) {
					categories = append(categories, part)
				}
			}
			s.logger.Debug("detected category columns", "categories", categories)
			continue
		}

		amounts := tabularAmountPattern.FindAllStringSubmatch(line, -1)
		if len(amounts) < 2 {
			continue
		}

		label := "Entry"
		if m := labelPattern.FindStringSubmatch(line); m != nil {
			label = m[1]
		}

		for j, match := range amounts {
			amount, err := decimal.NewFromString(strings.ReplaceAll(match[1], ",", ""))
			if err != nil || !amount.IsPositive() {
				continue
			}
			category := "Category " + strconv.Itoa(j+1)
			if j < len(categories) {
				category = categories[j]
			}
			txns = append(txns, models.RawTransaction{
				Date:        s.now(),
				Description: label + " - " + category,
				Amount:      amount.Abs().Neg(),
			})
		}
	}

	return txns
}

// parseDollarAmounts is the last-resort strategy: every $-prefixed value
// on a non-summary line becomes an expense
func (s *extractorService) parseDollarAmounts(text string, _ [][][]string) []models.RawTransaction {
	var txns []models.RawTransaction

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if containsAny(strings.ToLower(line), textSkipWords) {
			continue
		}

		for _, match := range dollarAmountPattern.FindAllStringSubmatch(line, -1) {
			amount, err := decimal.NewFromString(strings.ReplaceAll(match[1], ",", ""))
			if err != nil || !amount.IsPositive() {
				continue
			}

			desc := strings.TrimSpace(strippedAmountsRe.ReplaceAllString(line, ""))
			if len(desc) > 60 {
				desc = desc[:60]
			}
			if desc == "" {
				desc = "Expense"
			}

			txns = append(txns, models.RawTransaction{
				Date:        s.now(),
				Description: desc,
				Amount:      amount.Abs().Neg(),
			})
		}
	}

	return txns
}

// normalizeDate tries the accepted layouts in order
func (s *extractorService) normalizeDate(dateStr string) (time.Time, bool) {
	dateStr = strings.TrimSpace(dateStr)
	switch dateStr {
	case "", "-", "nan", "None":
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// mapColumns maps header cells to standard field indices, -1 when absent
func mapColumns(header []string) map[string]int {
	mapping := map[string]int{
		"date": -1, "description": -1, "debit": -1,
		"credit": -1, "amount": -1, "balance": -1,
	}
	for idx, col := range header {
		for field, variants := range transactionHeaders {
			if mapping[field] >= 0 {
				continue
			}
			for _, variant := range variants {
				if strings.Contains(col, variant) {
					mapping[field] = idx
					break
				}
			}
		}
	}
	return mapping
}

// resolveRowAmount prefers split debit/credit columns over a single
// signed amount column
func resolveRowAmount(debit, credit, amount string) (decimal.Decimal, bool) {
	if v := strings.TrimSpace(debit); v != "" && v != "-" {
		if parsed, ok := parseSignedAmount(v); ok && !parsed.IsZero() {
			return parsed.Abs().Neg(), true
		}
	}
	if v := strings.TrimSpace(credit); v != "" && v != "-" {
		if parsed, ok := parseSignedAmount(v); ok && !parsed.IsZero() {
			return parsed.Abs(), true
		}
	}
	if v := strings.TrimSpace(amount); v != "" {
		if parsed, ok := parseSignedAmount(v); ok && !parsed.IsZero() {
			return parsed, true
		}
	}
	return decimal.Zero, false
}

// extractCellAmount pulls the first money token out of a table cell.
// Unparseable tokens are skipped, never treated as zero.
func extractCellAmount(cell string) (decimal.Decimal, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return decimal.Zero, false
	}
	m := cellAmountPattern.FindStringSubmatch(cell)
	if m == nil {
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}

// parseSignedAmount parses $1,234.56, -1234.56 and (1234.56) forms
func parseSignedAmount(raw string) (decimal.Decimal, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '$', ',', ' ', '\t':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))

	if cleaned == "" || cleaned == "-" {
		return decimal.Zero, false
	}
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		cleaned = "-" + cleaned[1:len(cleaned)-1]
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func headerAt(header []string, idx int) string {
	if idx < 0 || idx >= len(header) {
		return ""
	}
	return header[idx]
}

func containsAny(text string, words []string) bool {
	for _, word := range words {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}

func containsLetter(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

