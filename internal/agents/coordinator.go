package agents

import (
	"context"
	"log/slog"

	"fincoach/internal/models"

	"golang.org/x/sync/errgroup"
)

// Coordinator fans the snapshot out to the four reasoning agents. Each
// agent failure is absorbed into its deterministic fallback so one bad
// model call never costs the whole assessment.
type Coordinator struct {
	debt    *DebtAnalyzer
	savings *SavingsStrategist
	budget  *BudgetOptimizer
	risk    *RiskScorer
	logger  *slog.Logger
}

// NewCoordinator wires the four agents over a shared completion client
func NewCoordinator(client LLMClient, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		debt:    NewDebtAnalyzer(client, logger),
		savings: NewSavingsStrategist(client, logger),
		budget:  NewBudgetOptimizer(client, logger),
		risk:    NewRiskScorer(client, logger),
		logger:  logger,
	}
}

// RunAll executes the four agents concurrently and always returns a
// complete set of outputs
func (c *Coordinator) RunAll(ctx context.Context, input Input) models.AgentOutputs {
	var outputs models.AgentOutputs

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		out, err := c.debt.Analyze(gctx, input)
		if err != nil {
			c.logger.Warn("debt analyzer failed, using fallback", "analysis_id", input.AnalysisID, "error", err)
			out = c.debt.Fallback(input)
		}
		outputs.Debt = out
		return nil
	})

	g.Go(func() error {
		out, err := c.savings.Analyze(gctx, input)
		if err != nil {
			c.logger.Warn("savings strategist failed, using fallback", "analysis_id", input.AnalysisID, "error", err)
			out = c.savings.Fallback(input)
		}
		outputs.Savings = out
		return nil
	})

	g.Go(func() error {
		out, err := c.budget.Analyze(gctx, input)
		if err != nil {
			c.logger.Warn("budget optimizer failed, using fallback", "analysis_id", input.AnalysisID, "error", err)
			out = c.budget.Fallback(input)
		}
		outputs.Budget = out
		return nil
	})

	g.Go(func() error {
		out, err := c.risk.Analyze(gctx, input)
		if err != nil {
			c.logger.Warn("risk scorer failed, using fallback", "analysis_id", input.AnalysisID, "error", err)
			out = c.risk.Fallback(input)
		}
		outputs.Risk = out
		return nil
	})

	// Goroutines never return errors; fallbacks absorb failures
	_ = g.Wait()

	return outputs
}
