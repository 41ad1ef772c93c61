package gig

import "testing"

func TestClearConstraintsRemovesBothWireSets(t *testing.T) {
	n := New(ModeFreeForm)
	pi, _ := n.Add(GatePI, nil, 0)

	n.Constraints().Add(pi)
	n.FairConstraints().Add(pi)
	if len(n.Constraints().Wires()) != 1 || len(n.FairConstraints().Wires()) != 1 {
		t.Fatal("expected both wire sets populated before ClearConstraints")
	}

	n.ClearConstraints()

	if len(n.Constraints().Wires()) != 0 {
		t.Errorf("constraints not cleared: %v", n.Constraints().Wires())
	}
	if len(n.FairConstraints().Wires()) != 0 {
		t.Errorf("fair constraints not cleared: %v", n.FairConstraints().Wires())
	}
}

func TestClearConstraintsLeavesPropertiesAlone(t *testing.T) {
	n := New(ModeFreeForm)
	pi, _ := n.Add(GatePI, nil, 0)

	n.Properties().Add(pi)
	n.Constraints().Add(pi)

	n.ClearConstraints()

	if len(n.Properties().Wires()) != 1 {
		t.Error("ClearConstraints should not touch Properties")
	}
}
