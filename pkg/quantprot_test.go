package quantprot_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	quantprot "github.com/mzlab/quantprot/pkg"
	"github.com/mzlab/quantprot/pkg/config"
)

var _ = Describe("QuantProt", func() {
	Describe("New", func() {
		It("generates new instance of QuantProt", func() {
			qp := quantprot.New(config.New())
			Expect(qp).ToNot(BeNil())
		})

		It("uses options for setup", func() {
			opts := getOpts()
			cfg := config.New(opts...)
			Expect(cfg.JobsNum).To(Equal(8))
			Expect(cfg.ResultsDir).To(Equal("/tmp/quantprot"))
			Expect(cfg.QuantitationRatios).To(Equal([]string{"115:114"}))
			Expect(cfg.CritFdr).To(Equal(1))
		})
	})

	Describe("GetVersion", func() {
		It("returns the version", func() {
			Expect(quantprot.GetVersion()).To(MatchRegexp(`^v\d+\.\d+\.\d+`))
		})
	})
})

func getOpts() []config.Option {
	var opts []config.Option
	opts = append(opts, config.OptResultsDir("/tmp/quantprot"))
	opts = append(opts, config.OptJobsNum(8))
	opts = append(opts, config.OptQuantitationRatios([]string{"115:114"}))
	opts = append(opts, config.OptPeptideConfThreshold(95))
	opts = append(opts, config.OptMinNumSpectra(4))
	opts = append(opts, config.OptCritFdr(1))
	opts = append(opts, config.OptMergedFileName("merged.csv"))
	opts = append(opts, config.OptNamesFileName("hkuAccessionProtName.txt"))
	return opts
}
