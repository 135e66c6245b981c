package ising_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/isingsim/internal/ising"
	"github.com/san-kum/isingsim/internal/lattice"
	"github.com/san-kum/isingsim/internal/rng"
)

type recordingImages struct {
	sweeps []int
	failAt int
}

func (r *recordingImages) OnSweep(v lattice.View, sweep int) error {
	if r.failAt >= 0 && sweep == r.failAt {
		return errors.New("disk full")
	}
	r.sweeps = append(r.sweeps, sweep)
	return nil
}

type recordingSeries struct {
	calls  int
	series []float64
	fail   bool
}

func (r *recordingSeries) OnSeries(series []float64) error {
	r.calls++
	if r.fail {
		return errors.New("read-only file system")
	}
	r.series = series
	return nil
}

type recordingFrames struct {
	calls  int
	frames []lattice.View
}

func (r *recordingFrames) OnFrames(frames []lattice.View) error {
	r.calls++
	r.frames = frames
	return nil
}

type countingMetric struct{ n int }

func (c *countingMetric) Name() string                           { return "count" }
func (c *countingMetric) Observe(lattice.View, ising.SweepStats) { c.n++ }
func (c *countingMetric) Value() float64                         { return float64(c.n) }
func (c *countingMetric) Reset()                                 { c.n = 0 }

func newRun(seed int64, size int, p ising.Params) (*ising.Runner, *lattice.Lattice) {
	src := rng.New(seed)
	l, err := lattice.New(size, p.Density, src)
	Expect(err).NotTo(HaveOccurred())
	return ising.NewRunner(ising.NewMetropolis(), src), l
}

var _ = Describe("Runner", func() {
	var params ising.Params

	BeforeEach(func() {
		params = ising.Params{J: 1.0, Beta: 0.5, B: 0.1, Steps: 10, Density: 0.5}
	})

	It("records one magnetization per sweep", func() {
		r, l := newRun(1, 8, params)
		result, err := r.Run(context.Background(), l, params)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Magnetization).To(HaveLen(10))
		Expect(result.Sweeps).To(Equal(10))
		Expect(result.Stats.Proposed).To(Equal(10 * 64))
		Expect(result.Magnetization[9]).To(Equal(l.Magnetization()))
		Expect(r.State()).To(Equal(ising.Completed))
	})

	It("keeps every magnetization within [-1, 1]", func() {
		for size := 1; size <= 6; size++ {
			p := params
			p.Beta = 0.2 * float64(size)
			r, l := newRun(int64(size), size, p)
			result, err := r.Run(context.Background(), l, p)
			Expect(err).NotTo(HaveOccurred())
			for _, m := range result.Magnetization {
				Expect(m).To(BeNumerically(">=", -1.0))
				Expect(m).To(BeNumerically("<=", 1.0))
			}
		}
	})

	It("is reproducible for a fixed seed", func() {
		r1, l1 := newRun(77, 16, params)
		r2, l2 := newRun(77, 16, params)

		a, err := r1.Run(context.Background(), l1, params)
		Expect(err).NotTo(HaveOccurred())
		b, err := r2.Run(context.Background(), l2, params)
		Expect(err).NotTo(HaveOccurred())

		Expect(a.Magnetization).To(Equal(b.Magnetization))
		Expect(l1.Spins()).To(Equal(l2.Spins()))
	})

	It("stays ordered at low temperature", func() {
		p := ising.Params{J: 1.0, Beta: 10.0, B: 0.0, Steps: 1, Density: 1.0}
		r, l := newRun(3, 4, p)
		result, err := r.Run(context.Background(), l, p)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Magnetization[0]).To(BeNumerically("~", 1.0, 0.1))
	})

	Context("with zero steps", func() {
		It("returns an empty series and only finalizes", func() {
			params.Steps = 0
			r, l := newRun(1, 4, params)
			images := &recordingImages{failAt: -1}
			series := &recordingSeries{}
			frames := &recordingFrames{}
			r.AddImageSink(images)
			r.AddMagnetizationSink(series)
			r.AddAnimationSink(frames)

			result, err := r.Run(context.Background(), l, params)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Magnetization).To(BeEmpty())
			Expect(images.sweeps).To(BeEmpty())
			Expect(series.calls).To(Equal(1))
			Expect(series.series).To(BeEmpty())
			Expect(frames.calls).To(Equal(1))
			Expect(frames.frames).To(BeEmpty())
		})
	})

	Context("with observers", func() {
		It("notifies image sinks per sweep and finalizes once", func() {
			r, l := newRun(2, 6, params)
			images := &recordingImages{failAt: -1}
			series := &recordingSeries{}
			r.AddImageSink(images)
			r.AddMagnetizationSink(series)

			result, err := r.Run(context.Background(), l, params)
			Expect(err).NotTo(HaveOccurred())
			Expect(images.sweeps).To(Equal([]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}))
			Expect(series.calls).To(Equal(1))
			Expect(series.series).To(Equal(result.Magnetization))
		})

		It("records deep-copied frames only when animation is requested", func() {
			r, l := newRun(4, 6, params)
			result, err := r.Run(context.Background(), l, params)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Frames).To(BeEmpty())

			r, l = newRun(4, 6, params)
			frames := &recordingFrames{}
			r.AddAnimationSink(frames)
			result, err = r.Run(context.Background(), l, params)
			Expect(err).NotTo(HaveOccurred())
			Expect(frames.frames).To(HaveLen(10))
			Expect(result.Frames).To(HaveLen(10))

			last := result.Frames[9]
			Expect(last.Spins()).To(Equal(l.Spins()))
			l.Flip(0, 0)
			Expect(last.Get(0, 0)).NotTo(Equal(l.Get(0, 0)))
		})

		It("hands sinks a copy of the series", func() {
			r, l := newRun(5, 4, params)
			series := &recordingSeries{}
			r.AddMagnetizationSink(series)
			result, err := r.Run(context.Background(), l, params)
			Expect(err).NotTo(HaveOccurred())

			series.series[0] = 42
			Expect(result.Magnetization[0]).NotTo(Equal(42.0))
		})

		It("propagates sink failures immediately", func() {
			r, l := newRun(6, 4, params)
			images := &recordingImages{failAt: 2}
			series := &recordingSeries{}
			r.AddImageSink(images)
			r.AddMagnetizationSink(series)

			result, err := r.Run(context.Background(), l, params)
			Expect(err).To(MatchError(ising.ErrObserverFailure))

			var obsErr *ising.ObserverError
			Expect(errors.As(err, &obsErr)).To(BeTrue())
			Expect(obsErr.Sweep).To(Equal(2))
			Expect(obsErr.Sink).To(Equal("image"))
			Expect(result.Magnetization).To(HaveLen(3))
			Expect(series.calls).To(BeZero())
		})

		It("reports finalization failures and skips later sinks", func() {
			r, l := newRun(11, 4, params)
			series := &recordingSeries{fail: true}
			frames := &recordingFrames{}
			r.AddMagnetizationSink(series)
			r.AddAnimationSink(frames)

			result, err := r.Run(context.Background(), l, params)
			Expect(err).To(MatchError(ising.ErrObserverFailure))

			var obsErr *ising.ObserverError
			Expect(errors.As(err, &obsErr)).To(BeTrue())
			Expect(obsErr.Sweep).To(Equal(-1))
			Expect(obsErr.Sink).To(Equal("magnetization"))
			Expect(series.calls).To(Equal(1))
			Expect(frames.calls).To(BeZero())
			Expect(result.Magnetization).To(HaveLen(10))
			Expect(r.State()).To(Equal(ising.Completed))
		})

		It("feeds metrics and reports their values", func() {
			r, l := newRun(7, 4, params)
			metric := &countingMetric{n: 99}
			r.AddMetric(metric)

			result, err := r.Run(context.Background(), l, params)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Metrics).To(HaveKeyWithValue("count", 10.0))
		})
	})

	Context("state machine", func() {
		It("refuses a second run", func() {
			r, l := newRun(8, 4, params)
			_, err := r.Run(context.Background(), l, params)
			Expect(err).NotTo(HaveOccurred())

			_, err = r.Run(context.Background(), l, params)
			Expect(err).To(MatchError(ising.ErrRunnerState))
		})

		It("rejects invalid parameters before starting", func() {
			r, l := newRun(9, 4, params)
			bad := params
			bad.Steps = -1

			_, err := r.Run(context.Background(), l, bad)
			Expect(err).To(MatchError(ising.ErrInvalidConfiguration))
			Expect(r.State()).To(Equal(ising.Created))
		})

		It("stops between sweeps when canceled", func() {
			r, l := newRun(10, 4, params)
			series := &recordingSeries{}
			r.AddMagnetizationSink(series)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			result, err := r.Run(ctx, l, params)
			Expect(err).To(MatchError(ising.ErrCanceled))
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
			Expect(result.Sweeps).To(BeZero())
			Expect(series.calls).To(BeZero())
			Expect(r.State()).To(Equal(ising.Completed))
		})
	})
})
