package bratu_test

import (
	"context"
	"errors"
	"math"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/fracsolve/internal/bratu"
	"github.com/san-kum/fracsolve/internal/collocation"
	"github.com/san-kum/fracsolve/internal/nlsolve"
	"github.com/san-kum/fracsolve/internal/reference"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// narrow returns a small grid with a sharp kernel, for which K is close to
// the identity and Newton converges in a handful of steps.
func narrow(alpha, lambda float64) bratu.Params {
	return bratu.Params{Alpha: alpha, Lambda: lambda, N: 11, Gamma: 400}
}

var _ = Describe("Solver", func() {
	var (
		ctx    context.Context
		solver *bratu.Solver
	)

	BeforeEach(func() {
		ctx = context.Background()
		solver = bratu.NewSolver()
	})

	Describe("parameter validation", func() {
		It("rejects a single collocation point before building matrices", func() {
			p := bratu.DefaultParams()
			p.N = 1
			sol, err := solver.Solve(ctx, p)
			Expect(sol).To(BeNil())
			Expect(err).To(MatchError(bratu.ErrInvalidParams))

			var cfgErr *bratu.ConfigError
			Expect(errors.As(err, &cfgErr)).To(BeTrue())
			Expect(cfgErr.Field).To(Equal("n"))
		})

		DescribeTable("rejects out-of-range values",
			func(mutate func(*bratu.Params), field string) {
				p := bratu.DefaultParams()
				mutate(&p)
				_, err := solver.Solve(ctx, p)
				Expect(err).To(MatchError(bratu.ErrInvalidParams))
				var cfgErr *bratu.ConfigError
				Expect(errors.As(err, &cfgErr)).To(BeTrue())
				Expect(cfgErr.Field).To(Equal(field))
			},
			Entry("alpha zero", func(p *bratu.Params) { p.Alpha = 0 }, "alpha"),
			Entry("alpha above one", func(p *bratu.Params) { p.Alpha = 1.5 }, "alpha"),
			Entry("gamma zero", func(p *bratu.Params) { p.Gamma = 0 }, "gamma"),
			Entry("lambda NaN", func(p *bratu.Params) { p.Lambda = math.NaN() }, "lambda"),
			Entry("non-uniform grid", func(p *bratu.Params) { p.Grid = []float64{0, 0.1, 1} }, "grid"),
		)
	})

	Describe("zero forcing", func() {
		It("returns the zero function without iterating", func() {
			sol, err := solver.Solve(ctx, narrow(0.75, 0))
			Expect(err).NotTo(HaveOccurred())
			Expect(sol.Status.Converged).To(BeTrue())
			Expect(sol.Status.Iterations).To(Equal(0))
			for _, u := range sol.Nodal() {
				Expect(u).To(BeNumerically("~", 0, 1e-12))
			}
		})
	})

	Describe("a well-conditioned problem", func() {
		var sol *bratu.Solution

		BeforeEach(func() {
			var err error
			sol, err = solver.Solve(ctx, narrow(0.75, 1))
			Expect(err).NotTo(HaveOccurred())
		})

		It("converges and honours the boundary conditions", func() {
			Expect(sol.Status.Converged).To(BeTrue(), sol.Status.Message)
			Expect(sol.Status.Code).To(Equal(nlsolve.Success))
			Expect(sol.Status.Residual).To(BeNumerically("<=", 1e-10))
			Expect(sol.Coefficients).To(HaveLen(11))

			u := sol.Nodal()
			Expect(math.Abs(u[0])).To(BeNumerically("<", 1e-6))
			Expect(math.Abs(u[10])).To(BeNumerically("<", 1e-6))
		})

		It("satisfies the collocation equations", func() {
			f, err := collocation.Residual(sol.Coefficients, sol.Matrices, 1)
			Expect(err).NotTo(HaveOccurred())
			for _, v := range f {
				Expect(math.Abs(v)).To(BeNumerically("<=", 1e-10))
			}
		})

		It("exposes the matrices it was built from", func() {
			r, c := sol.K().Dims()
			Expect(r).To(Equal(11))
			Expect(c).To(Equal(11))
			Expect(sol.D().At(0, 5)).To(BeZero())
			Expect(sol.Grid.Len()).To(Equal(11))
		})

		It("predicts K c at the grid nodes", func() {
			pred, err := sol.Predict(sol.Grid.Points())
			Expect(err).NotTo(HaveOccurred())
			nodal := sol.Nodal()
			for i := range pred {
				Expect(pred[i]).To(BeNumerically("~", nodal[i], 1e-12))
			}
		})

		It("is deterministic", func() {
			again, err := solver.Solve(ctx, narrow(0.75, 1))
			Expect(err).NotTo(HaveOccurred())
			Expect(again.Coefficients).To(Equal(sol.Coefficients))
			Expect(again.Status.Iterations).To(Equal(sol.Status.Iterations))
		})
	})

	Describe("alpha = 1", func() {
		It("solves the backward-difference discretization of u' + λe^u = 0", func() {
			const lambda = 1.0
			sol, err := solver.Solve(ctx, narrow(1, lambda))
			Expect(err).NotTo(HaveOccurred())
			Expect(sol.Status.Converged).To(BeTrue(), sol.Status.Message)

			u := sol.Nodal()
			h := sol.Grid.Spacing()
			for i := 1; i < len(u)-1; i++ {
				Expect((u[i]-u[i-1])/h + lambda*math.Exp(u[i])).To(BeNumerically("~", 0, 1e-8))
			}
		})
	})

	Describe("the analytic Jacobian", func() {
		It("reaches the same solution as finite differences", func() {
			fd, err := solver.Solve(ctx, narrow(0.75, 1))
			Expect(err).NotTo(HaveOccurred())

			analytic, err := bratu.NewSolver(bratu.WithAnalyticJacobian(true)).Solve(ctx, narrow(0.75, 1))
			Expect(err).NotTo(HaveOccurred())
			Expect(analytic.Status.Converged).To(BeTrue(), analytic.Status.Message)

			a, b := analytic.Nodal(), fd.Nodal()
			for i := range a {
				Expect(a[i]).To(BeNumerically("~", b[i], 1e-8))
			}
		})
	})

	Describe("Broyden", func() {
		It("reports an outcome for every run", func() {
			s := bratu.NewSolver(bratu.WithMethod(nlsolve.NewBroyden()))
			Expect(s.Method()).To(Equal("broyden"))
			sol, err := s.Solve(ctx, narrow(0.75, 1))
			Expect(err).NotTo(HaveOccurred())
			Expect(sol.Status.Message).NotTo(BeEmpty())
			if sol.Status.Converged {
				Expect(sol.Status.Residual).To(BeNumerically("<=", 1e-10))
			}
		})
	})

	Describe("the default configuration", func() {
		It("returns a status for the fractional case", func() {
			sol, err := solver.Solve(ctx, bratu.DefaultParams())
			Expect(err).NotTo(HaveOccurred())
			Expect(sol.Coefficients).To(HaveLen(51))
			Expect(sol.Status.Message).NotTo(BeEmpty())
			Expect(sol.Elapsed).To(BeNumerically(">", 0))
			if sol.Status.Converged {
				u := sol.Nodal()
				Expect(math.Abs(u[0])).To(BeNumerically("<", 1e-6))
				Expect(math.Abs(u[50])).To(BeNumerically("<", 1e-6))
			}
		})

		It("can be compared against the classical solution", func() {
			p := bratu.DefaultParams()
			p.Alpha = 1
			sol, err := solver.Solve(ctx, p)
			Expect(err).NotTo(HaveOccurred())

			xs := sol.Grid.Points()
			pred, err := sol.Predict(xs)
			Expect(err).NotTo(HaveOccurred())
			exact, err := reference.Sample(p.Lambda, xs)
			Expect(err).NotTo(HaveOccurred())

			metrics, err := reference.Evaluate(pred, exact, reference.DefaultMetrics()...)
			Expect(err).NotTo(HaveOccurred())
			Expect(metrics).To(HaveKey("rel_l2"))
			Expect(metrics).To(HaveKey("max_abs"))
			GinkgoWriter.Printf("alpha=1 %s: rel_l2=%.3e max_abs=%.3e\n",
				sol.Status.Message, metrics["rel_l2"], metrics["max_abs"])
		})
	})

	Describe("logging", func() {
		It("records the matrix inputs and the solve summary", func() {
			core, logs := observer.New(zapcore.DebugLevel)
			s := bratu.NewSolver(bratu.WithLogger(zap.New(core)))
			_, err := s.Solve(ctx, narrow(0.75, 1))
			Expect(err).NotTo(HaveOccurred())

			built := logs.FilterMessage("matrices built").All()
			Expect(built).To(HaveLen(1))
			fields := built[0].ContextMap()
			Expect(fields).To(HaveKeyWithValue("alpha", 0.75))
			Expect(fields).To(HaveKeyWithValue("gamma", 400.0))
			Expect(fields).To(HaveKeyWithValue("h", 0.1))

			solved := logs.FilterMessage("solved").All()
			Expect(solved).To(HaveLen(1))
			Expect(solved[0].ContextMap()).To(HaveKeyWithValue("lambda", 1.0))
		})

		It("warns when the iteration limit is reached", func() {
			core, logs := observer.New(zapcore.DebugLevel)
			s := bratu.NewSolver(
				bratu.WithLogger(zap.New(core)),
				bratu.WithSettings(nlsolve.Settings{MaxIterations: 1}),
			)
			sol, err := s.Solve(ctx, narrow(0.75, 1))
			Expect(err).NotTo(HaveOccurred())
			Expect(sol.Status.Converged).To(BeFalse())
			Expect(sol.Status.Code).To(Equal(nlsolve.IterationLimit))

			warned := logs.FilterLevelExact(zapcore.WarnLevel).All()
			Expect(warned).To(HaveLen(1))
			Expect(warned[0].Message).To(Equal("solver did not converge"))
			Expect(warned[0].ContextMap()).To(HaveKeyWithValue("status", "iteration limit"))
		})
	})

	Describe("cancellation", func() {
		It("stops before the first iteration", func() {
			canceled, cancel := context.WithCancel(ctx)
			cancel()
			_, err := solver.Solve(canceled, narrow(0.75, 1))
			Expect(err).To(MatchError(context.Canceled))
		})
	})
})

var _ = Describe("Predict", func() {
	It("handles an empty evaluation set", func() {
		out, err := bratu.Predict(nil, []float64{0, 1}, []float64{1, 2}, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(BeEmpty())
	})

	It("sums the kernel expansion", func() {
		out, err := bratu.Predict([]float64{0.5, 2}, []float64{0, 1}, []float64{1, 2}, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(out[0]).To(BeNumerically("~", 3*math.Exp(-2.5), 1e-15))
		Expect(out[1]).To(BeNumerically("~", math.Exp(-40)+2*math.Exp(-10), 1e-15))
	})

	It("rejects mismatched inputs", func() {
		_, err := bratu.Predict([]float64{0.5}, []float64{0, 1}, []float64{1}, 10)
		Expect(err).To(MatchError(bratu.ErrPredict))

		_, err = bratu.Predict([]float64{0.5}, []float64{0, 1}, []float64{1, 2}, -1)
		Expect(err).To(MatchError(bratu.ErrPredict))
	})
})

var _ = Describe("Sweep", func() {
	It("solves every entry and keeps input order", func() {
		params, err := bratu.Vary(narrow(0.75, 0), "lambda", []float64{0, 0.5, 1})
		Expect(err).NotTo(HaveOccurred())

		var done atomic.Int32
		results, err := bratu.NewSolver().Sweep(context.Background(), params, 2, func(bratu.SweepResult) {
			done.Add(1)
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(3))
		Expect(done.Load()).To(Equal(int32(3)))
		for i, r := range results {
			Expect(r.Index).To(Equal(i))
			Expect(r.Params.Lambda).To(Equal(params[i].Lambda))
			Expect(r.Solution.Status.Converged).To(BeTrue(), r.Solution.Status.Message)
		}
	})

	It("fails fast on an invalid entry", func() {
		params := []bratu.Params{narrow(0.75, 1), {Alpha: 2, Lambda: 1, N: 11, Gamma: 400}}
		_, err := bratu.NewSolver().Sweep(context.Background(), params, 0, nil)
		Expect(err).To(MatchError(bratu.ErrInvalidParams))
	})

	It("varies a single field", func() {
		params, err := bratu.Vary(bratu.DefaultParams(), "n", []float64{5, 9})
		Expect(err).NotTo(HaveOccurred())
		Expect(params[0].N).To(Equal(5))
		Expect(params[1].N).To(Equal(9))
		Expect(params[1].Alpha).To(Equal(0.75))

		_, err = bratu.Vary(bratu.DefaultParams(), "beta", []float64{1})
		Expect(err).To(MatchError(bratu.ErrInvalidParams))
	})

	It("rounds grid sizes to the nearest integer", func() {
		params, err := bratu.Vary(bratu.DefaultParams(), "n", []float64{10.9, 30.000000000000004, 7.2})
		Expect(err).NotTo(HaveOccurred())
		Expect(params[0].N).To(Equal(11))
		Expect(params[1].N).To(Equal(30))
		Expect(params[2].N).To(Equal(7))
	})

	It("spaces values evenly", func() {
		xs := bratu.Linspace(0, 1, 7)
		Expect(xs).To(HaveLen(7))
		Expect(xs[0]).To(Equal(0.0))
		Expect(xs[6]).To(Equal(1.0))
		Expect(xs[3]).To(BeNumerically("~", 0.5, 1e-15))
		Expect(bratu.Linspace(0.5, 1, 3)).To(Equal([]float64{0.5, 0.75, 1}))
		Expect(bratu.Linspace(2, 3, 1)).To(Equal([]float64{2}))
		Expect(bratu.Linspace(0, 1, 0)).To(BeEmpty())
	})
})
