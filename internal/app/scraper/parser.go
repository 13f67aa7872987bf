package scraper

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/ymakhloufi/kiwi-rates/internal/pkg/mapping"
	"github.com/ymakhloufi/kiwi-rates/internal/pkg/model"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// ErrNoRateTable means no detection rule matched any table on the page.
var ErrNoRateTable = errors.New("no rate table found on page")

var multiSpaceRe = regexp.MustCompile(`\s+`)

// TableRule is one table-detection strategy. Rules are tried in order and
// the first one that matches anything wins, so markup drift on the site is
// a configuration problem before it is a code problem.
type TableRule struct {
	Name  string
	XPath string
}

// DefaultTableRules returns the built-in detection order: the table id the
// site has used for years, then a class match, then a scan over every table
// that looks like it holds bank rates.
func DefaultTableRules() []TableRule {
	return []TableRule{
		{Name: "datatable-id", XPath: "//table[@id='interest_financial_datatable']"},
		{Name: "datatable-class", XPath: "//table[contains(@class, 'interest_financial_datatable') or contains(@class, 'financial-data')]"},
		{Name: "table-scan", XPath: "//table"},
	}
}

// RulesWithOverride prepends a configured XPath, when set, to the default
// detection rules.
func RulesWithOverride(xpath string) []TableRule {
	rules := DefaultTableRules()
	if xpath != "" {
		rules = append([]TableRule{{Name: "configured", XPath: xpath}}, rules...)
	}
	return rules
}

// Parser walks the rate tables and emits one raw observation per bank,
// tenor label and rate found. Bank context carries across rows because most
// banks list several products under a single logo row.
type Parser struct {
	rules      []TableRule
	normalizer *mapping.Normalizer
	extractor  *Extractor
	logger     *zap.Logger
}

func NewParser(rules []TableRule, normalizer *mapping.Normalizer, extractor *Extractor, logger *zap.Logger) *Parser {
	return &Parser{rules: rules, normalizer: normalizer, extractor: extractor, logger: logger}
}

// Parse extracts raw observations from every table matched by the first
// detection rule that finds one.
func (p *Parser) Parse(doc *html.Node) ([]model.RawObservation, error) {
	tables, rule, err := p.findRateTables(doc)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("matched rate tables", zap.String("rule", rule), zap.Int("count", len(tables)))

	var out []model.RawObservation
	for _, table := range tables {
		observations, err := p.parseTable(table)
		if err != nil {
			return nil, err
		}
		out = append(out, observations...)
	}
	return out, nil
}

func (p *Parser) findRateTables(doc *html.Node) ([]*html.Node, string, error) {
	for _, rule := range p.rules {
		nodes, err := htmlquery.QueryAll(doc, rule.XPath)
		if err != nil {
			// a broken expression in one rule must not mask the others
			p.logger.Warn("skipping invalid table rule", zap.String("rule", rule.Name), zap.Error(err))
			continue
		}

		matched := make([]*html.Node, 0, len(nodes))
		for _, node := range nodes {
			if p.looksLikeRateTable(node) {
				matched = append(matched, node)
			}
		}
		if len(matched) > 0 {
			return matched, rule.Name, nil
		}
	}
	return nil, "", ErrNoRateTable
}

// looksLikeRateTable accepts a table once it has seen a bank marker in some
// row and a decimal rate in some cell.
func (p *Parser) looksLikeRateTable(table *html.Node) bool {
	rows, err := htmlquery.QueryAll(table, "//tr")
	if err != nil {
		return false
	}

	hasBank, hasRate := false, false
	for _, row := range rows {
		cells, err := htmlquery.QueryAll(row, "//td")
		if err != nil || len(cells) == 0 {
			continue
		}
		if bankLabel(cells[0]) != "" {
			hasBank = true
		}
		if !hasRate {
			for _, cell := range cells {
				if rateRe.MatchString(getAllTextFromNode(cell)) {
					hasRate = true
					break
				}
			}
		}
		if hasBank && hasRate {
			return true
		}
	}
	return false
}

func (p *Parser) parseTable(table *html.Node) ([]model.RawObservation, error) {
	rows, err := htmlquery.QueryAll(table, "//tr")
	if err != nil {
		return nil, fmt.Errorf("failed to xpath rows: %w", err)
	}

	currentBank := ""
	skipped := 0
	var out []model.RawObservation
	for _, row := range rows {
		cells, err := htmlquery.QueryAll(row, "//td")
		if err != nil {
			return nil, fmt.Errorf("failed to xpath cells: %w", err)
		}
		if len(cells) == 0 {
			continue // header rows hold th cells only
		}

		if label := bankLabel(cells[0]); label != "" {
			bank := p.normalizer.Normalize(label)
			if bank != "" && bank != currentBank {
				p.logger.Info("found bank", zap.String("bank", bank), zap.String("label", label))
				currentBank = bank
			}
		}
		if currentBank == "" {
			// rows above the first logo carry no usable context
			skipped++
			continue
		}

		fields := make([]string, 0, len(cells)-1)
		for _, cell := range cells[1:] {
			fields = append(fields, getAllTextFromNode(cell))
		}
		out = append(out, p.extractor.Extract(currentBank, fields)...)
	}
	if skipped > 0 {
		p.logger.Debug("skipped rows before first bank marker", zap.Int("rows", skipped))
	}
	return out, nil
}

// bankLabel pulls a bank name out of a row's leading cell. The site tags
// bank rows with a logo image whose title (sometimes only alt) holds the
// name; a few layouts use a plain cell with an institution class instead.
func bankLabel(cell *html.Node) string {
	if img := htmlquery.FindOne(cell, "//img"); img != nil {
		if title := strings.TrimSpace(htmlquery.SelectAttr(img, "title")); title != "" {
			return title
		}
		if alt := strings.TrimSpace(htmlquery.SelectAttr(img, "alt")); alt != "" {
			return alt
		}
	}
	if class := htmlquery.SelectAttr(cell, "class"); strings.Contains(class, "institution") {
		return getAllTextFromNode(cell)
	}
	return ""
}

func getAllTextFromNode(node *html.Node) string {
	out := ""
	if node != nil {
		if node.Type == html.TextNode {
			out += " " + node.Data
		}

		// iterate over children
		nextNode := node.FirstChild
		for nextNode != nil {
			out += " " + getAllTextFromNode(nextNode)
			nextNode = nextNode.NextSibling
		}
	}

	// sanitize text
	out = strings.ReplaceAll(out, " ", " ")  // weird invisible space that's not a space
	out = multiSpaceRe.ReplaceAllString(out, " ") // merge multi-spaces
	return strings.Trim(out, " ")                 // trim spaces left and right
}
