package notify

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/bluabaleno/premarket-tracker/internal/domain"
	"github.com/bluabaleno/premarket-tracker/internal/ports"
)

const nameWidth = 32

// Console implementa ports.Notifier.
type Console struct {
	out       io.Writer
	budget    float64
	table     bool
	topMovers int
}

// NewConsole crea un notificador que escribe a stdout.
// budget es el capital de referencia para repartir cada arbitraje.
func NewConsole(budget float64, table bool, topMovers int) *Console {
	return NewConsoleWriter(os.Stdout, budget, table, topMovers)
}

// NewConsoleWriter crea un notificador sobre un writer arbitrario (tests).
func NewConsoleWriter(w io.Writer, budget float64, table bool, topMovers int) *Console {
	if topMovers <= 0 {
		topMovers = 5
	}
	return &Console{out: w, budget: budget, table: table, topMovers: topMovers}
}

// Notify imprime el ciclo en el modo configurado.
func (c *Console) Notify(_ context.Context, cycle domain.Cycle) error {
	c.printHeader(cycle)
	if !c.table {
		c.printCompact(cycle)
		return nil
	}

	ev := cycle.Evaluation
	c.printCoverage(ev.Report)
	c.printSpreads(ev.Report)
	c.printArbs(ev.Arbs)
	c.printLiquidity(ev.Liquidity)
	c.printMovers(cycle.Changes)
	c.printLaunches(cycle.Launches)
	c.printPortfolio(cycle.Portfolio)
	return nil
}

// printHeader imprime una línea de resumen del ciclo.
func (c *Console) printHeader(cycle domain.Cycle) {
	r := cycle.Evaluation.Report
	fmt.Fprintf(c.out, "\n[%s] poly:%d lim:%d projects | matched:%d poly-only:%d lim-only:%d | gaps:%d arbs:%d\n",
		cycle.RunAt.Format("2006-01-02 15:04"),
		len(cycle.Poly), len(cycle.Lim),
		r.TotalMatched, r.TotalPolyOnly, r.TotalLimOnly,
		r.GapCandidates, len(cycle.Evaluation.Arbs))
}

// printCompact imprime lo esencial: huecos y mejores arbitrajes en pocas líneas.
func (c *Console) printCompact(cycle domain.Cycle) {
	var gaps []string
	for _, pg := range cycle.Evaluation.Report.Projects {
		if pg.GapCandidate {
			gaps = append(gaps, pg.Name)
		}
	}
	if len(gaps) > 0 {
		fmt.Fprintf(c.out, "  gaps: %s\n", strings.Join(gaps, ", "))
	}

	for i, arb := range cycle.Evaluation.Arbs {
		if i >= 3 {
			break
		}
		fmt.Fprintf(c.out, "  arb: %s %s edge %.2f%%\n", arb.Pair.Project, arb.Pair.Key(), arb.EdgePct)
	}
	for _, l := range cycle.Launches {
		fmt.Fprintf(c.out, "  launched: %s TGE %s\n", l.Project, l.TGEDate.Format("2006-01-02"))
	}
	if len(cycle.Portfolio) > 0 {
		t := domain.TotalPnL(cycle.Portfolio)
		fmt.Fprintf(c.out, "  portfolio: %d positions P&L $%.2f (%+.1f%%)\n", t.Positions, t.PnL, t.PnLPct)
	}
}

// printCoverage imprime la presencia de cada proyecto en ambas plataformas.
func (c *Console) printCoverage(r domain.GapReport) {
	if len(r.Projects) == 0 {
		fmt.Fprintln(c.out, "  No projects found")
		return
	}
	fmt.Fprintln(c.out, "\n=== COVERAGE ===")

	table := tablewriter.NewWriter(c.out)
	table.Header("Project", "Poly", "Limitless", "Matched", "Poly only", "Lim only", "Max spread", "Status")
	for _, pg := range r.Projects {
		table.Append(
			truncate(pg.Name, nameWidth),
			yesNo(pg.OnPolymarket),
			yesNo(pg.OnLimitless),
			fmt.Sprintf("%d", len(pg.Matched)),
			fmt.Sprintf("%d", len(pg.PolyOnly)),
			fmt.Sprintf("%d", len(pg.LimOnly)),
			fmt.Sprintf("%.1fpp", pg.MaxAbsSpread),
			coverageStatus(pg),
		)
	}
	table.Render()
}

// printSpreads imprime las parejas emparejadas con spread y delgadez del book.
func (c *Console) printSpreads(r domain.GapReport) {
	if r.TotalMatched == 0 {
		return
	}
	fmt.Fprintln(c.out, "\n=== MATCHED SPREADS ===")

	table := tablewriter.NewWriter(c.out)
	table.Header("Project", "Key", "Poly YES", "Lim YES", "Spread", "Severity", "Vol/Depth", "Book")
	for _, pg := range r.Projects {
		for _, pa := range pg.Matched {
			table.Append(
				truncate(pg.Name, nameWidth),
				pa.Pair.Key().String(),
				cents(pa.Pair.Poly.YesPrice),
				cents(pa.Pair.Lim.YesPrice),
				fmt.Sprintf("%+.1fpp", pa.SpreadPP),
				pa.Severity.String(),
				ratioLabel(pa.Ratio),
				pa.Thinness.String(),
			)
		}
	}
	table.Render()
	fmt.Fprintln(c.out, "  Spread = Poly YES − Lim YES | Vol/Depth sobre el book de Limitless")
}

// printArbs imprime las oportunidades Lim YES + Poly NO con el reparto del budget.
func (c *Console) printArbs(arbs []domain.ArbOpportunity) {
	if len(arbs) == 0 {
		fmt.Fprintln(c.out, "\n  No arbitrage: every matched pair costs ≥ $1")
		return
	}
	fmt.Fprintf(c.out, "\n=== ARBITRAGE (budget $%.0f) ===\n", c.budget)

	table := tablewriter.NewWriter(c.out)
	table.Header("Project", "Key", "Lim YES", "Poly NO", "Cost", "Edge", "Lim $", "Poly $", "Profit $")
	for _, arb := range arbs {
		row := []any{
			truncate(arb.Pair.Project, nameWidth),
			arb.Pair.Key().String(),
			cents(arb.Pair.Lim.YesPrice),
			cents(arb.Pair.Poly.NoPrice()),
			fmt.Sprintf("%.3f", arb.CombinedCost),
			fmt.Sprintf("%.2f%%", arb.EdgePct),
		}
		if c.budget > 0 {
			split := arb.Split(c.budget).Cents()
			row = append(row,
				"$"+split.LimSpend.StringFixed(2),
				"$"+split.PolySpend.StringFixed(2),
				"$"+split.Profit.StringFixed(2),
			)
		} else {
			row = append(row, "-", "-", "-")
		}
		table.Append(row...)
	}
	table.Render()
	fmt.Fprintln(c.out, "  Supone fill al precio cotizado y resolución idéntica en ambas plataformas")
}

// printLiquidity imprime los books de Limitless que más necesitan profundidad.
func (c *Console) printLiquidity(r domain.LiquidityReport) {
	if len(r.Markets) == 0 {
		return
	}
	fmt.Fprintf(c.out, "\n=== LIMITLESS LIQUIDITY (%d active: %d clob, %d amm) ===\n",
		len(r.Markets), r.CLOBCount, r.AMMCount)
	fmt.Fprintf(c.out, "  critical:%d wide-spread:%d low-depth:%d priority:%d\n",
		len(r.Critical), len(r.WideSpread), len(r.LowDepth), len(r.Priority))

	top := r.Critical
	if len(top) == 0 {
		return
	}
	if len(top) > 10 {
		top = top[:10]
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Market", "Type", "Volume", "Depth", "Vol/Depth", "Spread")
	for _, ml := range top {
		spread := "-"
		if ml.HasSpread {
			spread = fmt.Sprintf("%.1fpp", ml.SpreadPP)
		}
		table.Append(
			domain.TruncateQuestion(ml.Quote.Question, ml.Quote.Slug, 40),
			string(ml.Quote.Liquidity.Type),
			fmt.Sprintf("$%.0f", ml.Quote.Volume),
			fmt.Sprintf("$%.0f", ml.Quote.Liquidity.Depth),
			ratioLabel(ml.Ratio),
			spread,
		)
	}
	table.Render()
}

// printMovers imprime los mayores movimientos de precio desde el ciclo anterior.
func (c *Console) printMovers(changes []domain.PriceChange) {
	if len(changes) == 0 {
		return
	}
	s := domain.SummarizeChanges(changes)
	fmt.Fprintf(c.out, "\n=== MOVERS (%d changed: %d up, %d down, avg %+.1fc) ===\n",
		s.Total, s.Up, s.Down, s.AvgChange*100)

	table := tablewriter.NewWriter(c.out)
	table.Header("Platform", "Market", "Prev", "Now", "Change")
	for _, ch := range domain.TopMovers(changes, c.topMovers, domain.DirectionBoth) {
		table.Append(
			ch.Platform.String(),
			domain.TruncateQuestion(ch.Question, ch.Slug, 40),
			cents(ch.PrevPrice),
			cents(ch.Price),
			fmt.Sprintf("%+.1f%%", ch.ChangePct),
		)
	}
	table.Render()
}

// printLaunches imprime los lanzamientos detectados en este ciclo.
func (c *Console) printLaunches(launches []domain.Launch) {
	if len(launches) == 0 {
		return
	}
	fmt.Fprintf(c.out, "\n=== LAUNCHES DETECTED (%d) ===\n", len(launches))

	table := tablewriter.NewWriter(c.out)
	table.Header("Project", "TGE", "FDV result", "FDV vol", "Launch vol", "Other vol", "Lim vol")
	for _, l := range launches {
		fdv := "-"
		if l.FDVResult != nil {
			fdv = ">" + l.FDVResult.Label
		}
		table.Append(
			truncate(l.Project, nameWidth),
			l.TGEDate.Format("2006-01-02"),
			fdv,
			fmt.Sprintf("$%.0f", l.FDVVolume),
			fmt.Sprintf("$%.0f", l.LaunchVolume),
			fmt.Sprintf("$%.0f", l.OtherVolume),
			fmt.Sprintf("$%.0f", l.LimVolume),
		)
	}
	table.Render()
}

// printPortfolio imprime el P&L de cada pata y el total.
func (c *Console) printPortfolio(results []domain.PositionPnL) {
	if len(results) == 0 {
		return
	}
	total := domain.TotalPnL(results)
	fmt.Fprintf(c.out, "\n=== PORTFOLIO (%d positions, cost $%.2f, value $%.2f, P&L $%+.2f / %+.1f%%) ===\n",
		total.Positions, total.Cost, total.Value, total.PnL, total.PnLPct)

	table := tablewriter.NewWriter(c.out)
	table.Header("Position", "Platform", "Market", "Side", "Shares", "Entry", "Now", "P&L")
	for _, r := range results {
		name := r.Position.Name
		if name == "" {
			name = r.Position.ID
		}
		for _, lp := range r.Legs {
			now := cents(lp.CurrentPrice)
			if !lp.Priced {
				now += " (stale)"
			}
			table.Append(
				truncate(name, nameWidth),
				lp.Leg.Platform.String(),
				truncate(lp.Leg.Slug, 40),
				strings.ToUpper(string(lp.Leg.Side)),
				fmt.Sprintf("%.2f", lp.Leg.Shares),
				cents(lp.Leg.EntryPrice),
				now,
				fmt.Sprintf("$%+.2f", lp.PnL),
			)
		}
	}
	table.Render()
}

// --- helpers ---

func coverageStatus(pg domain.ProjectGap) string {
	switch {
	case !pg.OnLimitless:
		return "NOT ON LIMITLESS"
	case pg.GapCandidate:
		return "GAP"
	case !pg.OnPolymarket:
		return "limitless only"
	}
	return "ok"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "-"
}

func cents(p float64) string {
	return fmt.Sprintf("%.1fc", p*100)
}

func ratioLabel(r float64) string {
	if math.IsInf(r, 1) {
		return "INF"
	}
	return fmt.Sprintf("%.1f", r)
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// PrintLaunches imprime todos los lanzamientos registrados.
func (c *Console) PrintLaunches(launches []domain.Launch) {
	if len(launches) == 0 {
		fmt.Fprintln(c.out, "  No launches recorded yet")
		return
	}
	c.printLaunches(launches)
}

// PrintHistory imprime los últimos ciclos guardados.
func (c *Console) PrintHistory(cycles []ports.CycleSummary) {
	if len(cycles) == 0 {
		fmt.Fprintln(c.out, "  No cycles stored yet")
		return
	}
	fmt.Fprintf(c.out, "\n=== HISTORY (last %d cycles) ===\n", len(cycles))

	table := tablewriter.NewWriter(c.out)
	table.Header("Run at", "Poly mkts", "Lim mkts", "Matched", "Gaps", "Arbs", "Best edge")
	for _, cs := range cycles {
		best := "-"
		if cs.Arbs > 0 {
			best = fmt.Sprintf("%.2f%%", cs.BestEdgePct)
		}
		table.Append(
			cs.RunAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", cs.PolyMarkets),
			fmt.Sprintf("%d", cs.LimMarkets),
			fmt.Sprintf("%d", cs.Matched),
			fmt.Sprintf("%d", cs.GapCandidates),
			fmt.Sprintf("%d", cs.Arbs),
			best,
		)
	}
	table.Render()
}
