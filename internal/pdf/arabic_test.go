package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShapeContextualForms(t *testing.T) {
	// seen initial, lam-alef final ligature, meem isolated (alef never joins forward)
	assert.Equal(t, []rune{0xFEB3, 0xFEFC, 0xFEE1}, []rune(Shape("سلام")))
}

func TestShapeIsolatedLamAlef(t *testing.T) {
	assert.Equal(t, string(rune(0xFEFB)), Shape("لا"))
}

func TestShapeMedialForm(t *testing.T) {
	// beh between two dual-joining letters
	assert.Equal(t, []rune{0xFE97, 0xFE92, 0xFEEA}, []rune(Shape("تبه")))
}

func TestShapeStripsMarksAndControls(t *testing.T) {
	assert.Equal(t, Shape("مرحبا"), Shape("مَرْحَبًا"))
	assert.Equal(t, "abc", Shape("\u200fabc\u202c"))
}

func TestShapeLeavesLatinAlone(t *testing.T) {
	assert.Equal(t, "Invoice 42", Shape("Invoice 42"))
}

func TestVisualReversesArabic(t *testing.T) {
	assert.Equal(t, []rune{0xFEE1, 0xFEFC, 0xFEB3}, []rune(Visual(Shape("سلام"))))
}

func TestVisualKeepsLatinRunsInOrder(t *testing.T) {
	assert.Equal(t, "ABC 123 ابحرم", Visual("مرحبا ABC 123"))
}

func TestVisualMirrorsBrackets(t *testing.T) {
	assert.Equal(t, "(ابحرم)", Visual("(مرحبا)"))
}

func TestVisualLTRUnchanged(t *testing.T) {
	assert.Equal(t, "Hello (world)", Visual("Hello (world)"))
}

func TestIsRTL(t *testing.T) {
	assert.True(t, IsRTL("Total: مبلغ"))
	assert.False(t, IsRTL("Total: 500 AED"))
	assert.False(t, IsRTL(""))
}
