package quantprot_test

import (
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func TestQuantProt(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "QuantProt Suite")
}
