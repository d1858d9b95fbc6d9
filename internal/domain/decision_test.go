package domain_test

import (
	"reflect"
	"testing"

	"github.com/randallong/irentstuff-transactions/internal/domain"
)

// irentstuffTable is the full production target table: four purchase
// targets, four rental targets, and the ungrouped auth target.
func irentstuffTable(t *testing.T) domain.TargetTable {
	t.Helper()
	table, err := domain.NewTargetTable([]domain.Target{
		{ID: "irentstuff_authenticate_user", Group: domain.GroupNone, Source: "irentstuff_authenticate_user"},
		{ID: "irentstuff_purchase_add", Group: domain.GroupPurchase, Source: "irentstuff_purchase_add"},
		{ID: "irentstuff_purchase_get", Group: domain.GroupPurchase, Source: "irentstuff_purchase_get"},
		{ID: "irentstuff_purchase_update", Group: domain.GroupPurchase, Source: "irentstuff_purchase_update"},
		{ID: "irentstuff_purchase_user", Group: domain.GroupPurchase, Source: "irentstuff_purchase_user"},
		{ID: "irentstuff_rental_add", Group: domain.GroupRental, Source: "irentstuff_rental_add"},
		{ID: "irentstuff_rental_update", Group: domain.GroupRental, Source: "irentstuff_rental_update"},
		{ID: "irentstuff_rental_user", Group: domain.GroupRental, Source: "irentstuff_rental_user"},
		{ID: "irentstuff_rentals_get", Group: domain.GroupRental, Source: "irentstuff_rentals_get"},
	})
	if err != nil {
		t.Fatalf("NewTargetTable: %v", err)
	}
	return table
}

func decideAll(t *testing.T, message string) domain.DecisionSet {
	t.Helper()
	var engine domain.DecisionEngine
	return engine.Decide(domain.NormalizeTrigger(message), irentstuffTable(t))
}

func TestDecide_GlobalPhraseActivatesEveryTarget(t *testing.T) {
	set := decideAll(t, "release v2\ndeploy all Lambdas")

	for _, d := range set.Decisions {
		if !d.Deploy {
			t.Errorf("target %s: decision = false, want true", d.Target)
		}
	}
	if len(set.Decisions) != 9 {
		t.Fatalf("decisions: got %d, want 9", len(set.Decisions))
	}
}

func TestDecide_GroupPhraseActivatesOnlyThatGroup(t *testing.T) {
	set := decideAll(t, "deploy all purchase Lambdas")

	table := irentstuffTable(t)
	for _, target := range table.Targets() {
		want := target.Group == domain.GroupPurchase
		if got := set.Deploy(target.ID); got != want {
			t.Errorf("target %s: decision = %v, want %v", target.ID, got, want)
		}
	}
}

func TestDecide_RentalGroupIncludesRentalsGet(t *testing.T) {
	// irentstuff_rentals_get is a rental target by configuration even
	// though its ID pluralizes differently.
	set := decideAll(t, "deploy all rental Lambdas")

	if !set.Deploy("irentstuff_rentals_get") {
		t.Error("irentstuff_rentals_get must deploy on the rental group phrase")
	}
	if set.Deploy("irentstuff_purchase_add") {
		t.Error("purchase target must not deploy on the rental group phrase")
	}
	if set.Deploy("irentstuff_authenticate_user") {
		t.Error("ungrouped target must not deploy on a group phrase")
	}
}

func TestDecide_IndividualPhraseActivatesExactlyOneTarget(t *testing.T) {
	set := decideAll(t, "hotfix deploy irentstuff_rental_update")

	active := set.ActiveTargets()
	if len(active) != 1 || active[0] != "irentstuff_rental_update" {
		t.Errorf("active targets = %v, want [irentstuff_rental_update]", active)
	}
}

func TestDecide_EmptyAndUnrelatedMessages(t *testing.T) {
	for _, message := range []string{"", "fix typo in README", "deploy", "deploy all"} {
		set := decideAll(t, message)
		if active := set.ActiveTargets(); len(active) != 0 {
			t.Errorf("message %q: active targets = %v, want none", message, active)
		}
	}
}

func TestDecide_SubstringContainmentIsThePublishedContract(t *testing.T) {
	// "deploy irentstuff_purchase_user_extra" contains
	// "deploy irentstuff_purchase_user" as a substring, so that target
	// still activates. Whole-word matching is deliberately not applied.
	set := decideAll(t, "deploy irentstuff_purchase_user_extra")

	if !set.Deploy("irentstuff_purchase_user") {
		t.Error("substring containment must activate the prefix target")
	}
}

func TestDecide_Idempotent(t *testing.T) {
	msg := domain.NormalizeTrigger("deploy all rental Lambdas and deploy irentstuff_purchase_get")
	table := irentstuffTable(t)
	var engine domain.DecisionEngine

	first := engine.Decide(msg, table)
	second := engine.Decide(msg, table)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("decisions differ across identical runs:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestDecisionSetFlags(t *testing.T) {
	set := decideAll(t, "deploy irentstuff_authenticate_user")

	flags := set.Flags()
	if len(flags) != 9 {
		t.Fatalf("flags: got %d entries, want 9", len(flags))
	}
	if !flags["deploy_irentstuff_authenticate_user"] {
		t.Error("deploy_irentstuff_authenticate_user flag must be true")
	}
	if flags["deploy_irentstuff_rental_add"] {
		t.Error("deploy_irentstuff_rental_add flag must be false")
	}
}

func TestDecisionSetDeployUnknownTarget(t *testing.T) {
	set := decideAll(t, "deploy all Lambdas")
	if set.Deploy("no_such_target") {
		t.Error("unknown target must never deploy")
	}
}
