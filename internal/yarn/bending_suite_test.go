package yarn_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mkraev/yarnsim/internal/config"
	"github.com/mkraev/yarnsim/internal/engine"
	"github.com/mkraev/yarnsim/internal/engine/rigid"
	"github.com/mkraev/yarnsim/internal/spatial"
	"github.com/mkraev/yarnsim/internal/yarn"
)

func TestBending(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Bending Compliance Suite")
}

var _ = Describe("bending compliance", func() {
	var (
		sys   *rigid.System
		chain *yarn.Chain
	)

	build := func(segments int) {
		var err error
		sys, err = rigid.New(engine.DefaultOptions())
		Expect(err).NotTo(HaveOccurred())

		cfg := config.YarnConfig{
			Length:         1.0,
			SegmentCount:   segments,
			Radius:         0.01,
			Density:        500,
			StartPosition:  [3]float64{0, 1, 0},
			StartDirection: [3]float64{1, 0, 0},
		}
		chain, err = yarn.BuildChain(sys, cfg, nil, nil, false)
		Expect(err).NotTo(HaveOccurred())
	}

	Describe("translational proxy", func() {
		It("rejects span 1", func() {
			build(5)
			_, err := yarn.AddBendingProxyTSDAs(sys, chain, 1, 1.0, 0.01)
			Expect(err).To(HaveOccurred())
			Expect(chain.AuxLinks).To(BeEmpty())
		})

		It("creates count-minus-span links", func() {
			build(5)
			links, err := yarn.AddBendingProxyTSDAs(sys, chain, 2, 1.0, 0.01)
			Expect(err).NotTo(HaveOccurred())
			Expect(links).To(HaveLen(3))
			Expect(chain.AuxLinks).To(HaveLen(3))
		})

		It("sets the rest length to span segment lengths", func() {
			build(10)
			links, err := yarn.AddBendingProxyTSDAs(sys, chain, 3, 2.0, 0.05)
			Expect(err).NotTo(HaveOccurred())
			for _, l := range links {
				Expect(l.Kind()).To(Equal(engine.LinkTSDA))
				Expect(l.Config().Rest).To(BeNumerically("~", 0.3, 1e-12))
			}
		})

		It("is a no-op on chains no longer than the span", func() {
			build(3)
			links, err := yarn.AddBendingProxyTSDAs(sys, chain, 3, 1.0, 0.01)
			Expect(err).NotTo(HaveOccurred())
			Expect(links).To(BeEmpty())
		})

		It("appends to earlier aux links instead of replacing them", func() {
			build(8)
			first, err := yarn.AddBendingProxyTSDAs(sys, chain, 2, 1.0, 0.01)
			Expect(err).NotTo(HaveOccurred())
			second, err := yarn.AddBendingProxyTSDAs(sys, chain, 4, 1.0, 0.01)
			Expect(err).NotTo(HaveOccurred())
			Expect(chain.AuxLinks).To(HaveLen(len(first) + len(second)))
		})
	})

	Describe("rotational dampers", func() {
		It("creates one damper per adjacent pair", func() {
			build(6)
			links := yarn.AddBendingRSDAs(sys, chain, 1e-6, 1e-7, 0)
			Expect(links).To(HaveLen(5))
			for _, l := range links {
				Expect(l.Kind()).To(Equal(engine.LinkRSDA))
			}
		})

		It("accepts explicit anchor points", func() {
			build(4)
			points := []spatial.Vec3{
				spatial.V(0.25, 1, 0),
				spatial.V(0.5, 1, 0),
				spatial.V(0.75, 1, 0),
			}
			links, err := yarn.AddBendingRSDAsAt(sys, chain, points, 1e-6, 1e-7, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(links).To(HaveLen(3))
		})

		It("rejects a mismatched anchor point count", func() {
			build(4)
			_, err := yarn.AddBendingRSDAsAt(sys, chain, []spatial.Vec3{{}}, 1e-6, 1e-7, 0)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("diagnostics", func() {
		It("reports zero gap at construction", func() {
			build(12)
			Expect(yarn.MaxNeighborJointGap(chain)).To(BeNumerically("<", 1e-9))
		})

		It("is idempotent without stepping", func() {
			build(12)
			first := yarn.MaxNeighborJointGap(chain)
			second := yarn.MaxNeighborJointGap(chain)
			Expect(second).To(Equal(first))
		})

		It("snapshots positions in segment order", func() {
			build(4)
			positions := yarn.SegmentPositions(chain)
			Expect(positions).To(HaveLen(4))
			for i := 1; i < len(positions); i++ {
				Expect(positions[i][0]).To(BeNumerically(">", positions[i-1][0]))
			}
		})
	})
})
