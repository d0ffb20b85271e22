package engine_test

import (
	"testing"

	"github.com/warp/incentive-engine/engine"
)

// =============================================================================
// ACCOUNT QUALIFIER TESTS
// =============================================================================

func TestQualify_CommissionBelowFloorExcluded(t *testing.T) {
	// GIVEN: Rule with 1000 floor; one account at 500 commission, one at 1500
	// WHEN: Qualifying
	// THEN: Only the second account's revenue counts

	accounts := []engine.Account{
		account("acc-low", "user-1"),
		account("acc-high", "user-1"),
	}
	sales := []engine.SalesDatum{
		sale("acc-low", 200000, 500),
		sale("acc-high", 30000, 1500),
	}

	q := engine.Qualify(accounts, sales, standardRule())

	if len(q.QualifiedAccountIDs) != 1 || q.QualifiedAccountIDs[0] != "acc-high" {
		t.Errorf("expected [acc-high], got %v", q.QualifiedAccountIDs)
	}
	equalDec(t, dec(30000), q.QualifyingRevenue, "qualifying revenue")
}

func TestQualify_CommissionExactlyAtFloorQualifies(t *testing.T) {
	// GIVEN: Commission summed across two sales records equals the floor
	// WHEN: Qualifying
	// THEN: The account qualifies (inclusive comparison, summed per account)

	accounts := []engine.Account{account("acc-1", "user-1")}
	sales := []engine.SalesDatum{
		sale("acc-1", 10000, 400),
		{ID: "s2", AccountID: "acc-1", TotalPurchases: dec(5000), GrossCommission: dec(600)},
	}

	q := engine.Qualify(accounts, sales, standardRule())

	if len(q.QualifiedAccountIDs) != 1 {
		t.Fatalf("expected account to qualify, got %v", q.QualifiedAccountIDs)
	}
	equalDec(t, dec(15000), q.QualifyingRevenue, "qualifying revenue")
}

func TestQualify_NoSalesDataFailsUnlessZeroFloor(t *testing.T) {
	// GIVEN: An account with zero sales records
	// WHEN: Qualifying against a positive floor, then a zero floor
	// THEN: Fails the positive floor, passes the zero floor

	accounts := []engine.Account{account("acc-empty", "user-1")}

	q := engine.Qualify(accounts, nil, standardRule())
	if len(q.QualifiedAccountIDs) != 0 {
		t.Errorf("account without sales should fail a positive floor")
	}

	noFloor := standardRule()
	noFloor.MinCommissionThreshold = dec(0)
	q = engine.Qualify(accounts, nil, noFloor)
	if len(q.QualifiedAccountIDs) != 1 {
		t.Errorf("account without sales should pass a zero floor")
	}
	equalDec(t, dec(0), q.QualifyingRevenue, "qualifying revenue")
}

func TestQualify_IgnoresOtherUsersSales(t *testing.T) {
	// GIVEN: The global sales collection holds records for a foreign account
	// WHEN: Qualifying this user's accounts
	// THEN: Foreign records affect nothing

	accounts := []engine.Account{account("acc-1", "user-1")}
	sales := []engine.SalesDatum{
		sale("acc-1", 20000, 2000),
		sale("acc-foreign", 999999, 99999),
	}

	q := engine.Qualify(accounts, sales, standardRule())
	equalDec(t, dec(20000), q.QualifyingRevenue, "qualifying revenue")
}

func TestTotals_SumsAcrossAllOwnedAccounts(t *testing.T) {
	accounts := []engine.Account{
		account("acc-1", "user-1"),
		account("acc-2", "user-1"),
	}
	sales := []engine.SalesDatum{
		sale("acc-1", 100, 10),
		sale("acc-2", 200, 20),
		sale("acc-foreign", 1000, 100),
	}

	revenue, commission := engine.Totals(accounts, sales)
	equalDec(t, dec(300), revenue, "revenue")
	equalDec(t, dec(30), commission, "commission")
}

func TestCommissionRate_ZeroRevenue(t *testing.T) {
	// Blended rate is defined as zero when revenue is zero
	equalDec(t, dec(0), engine.CommissionRate(dec(500), dec(0)), "rate at zero revenue")
	equalDec(t, dec(10), engine.CommissionRate(dec(100), dec(1000)), "rate")
}
