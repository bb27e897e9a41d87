package semref

import (
	"encoding/json"
	"testing"

	"github.com/chromedp/cdproto/accessibility"
)

func axValue(v string) *accessibility.AXValue {
	return &accessibility.AXValue{Value: json.RawMessage(`"` + v + `"`)}
}

func TestClassifyKeepsInteractiveRoleEvenUnnamed(t *testing.T) {
	n := &accessibility.Node{Role: axValue("button")}
	keep, role, _, _ := classify(n)
	if !keep || role != "button" {
		t.Errorf("expected interactive role kept, got keep=%v role=%q", keep, role)
	}
}

func TestClassifyDropsGenericRole(t *testing.T) {
	n := &accessibility.Node{Role: axValue("generic")}
	keep, _, _, _ := classify(n)
	if keep {
		t.Error("expected generic role discarded")
	}
}

func TestClassifyDropsIgnoredNode(t *testing.T) {
	n := &accessibility.Node{Ignored: true, Role: axValue("button")}
	keep, _, _, _ := classify(n)
	if keep {
		t.Error("expected ignored node discarded regardless of role")
	}
}

func TestClassifyKeepsStructuralRoleOnlyWhenNamed(t *testing.T) {
	unnamed := &accessibility.Node{Role: axValue("heading")}
	if keep, _, _, _ := classify(unnamed); keep {
		t.Error("expected unnamed heading discarded")
	}

	named := &accessibility.Node{Role: axValue("heading"), Name: axValue("Pricing")}
	if keep, _, _, _ := classify(named); !keep {
		t.Error("expected named heading kept")
	}
}
