/*
reconcile.go - Rebalancing automatic installments around manual edits

PURPOSE:
  Once a buyer hand-edits individual installments, the even split no
  longer adds up. Reconcile recomputes the automatic rows so the whole
  plan sums exactly to the financed total again, without touching any
  manual row and without letting an automatic row fall under the
  minimum installment value.

PROCEDURE (single pass):
  1. Partition rows into manual and automatic, keeping original order.
  2. remainder = target - sum(manual rows).
  3. No automatic rows left: succeed iff remainder == 0.
  4. perAuto = floor(remainder / len(automatic rows)).
  5. perAuto under the floor: hard stop, nothing is mutated.
  6. Every automatic row gets perAuto except the LAST one in row order,
     which absorbs the integer-division residue. This pins rounding
     drift to a single known slot instead of letting it accumulate.
  7. Re-check the floor on the distributed rows; the absorbed residue
     can, in edge cases, push the last row under it.

MANUAL ROWS AND THE FLOOR:
  Manual rows are exempt from the floor checks. A buyer who explicitly
  types a sub-minimum amount has made that choice; the quote layer
  flags it visually but reconciliation does not reject it.

IDEMPOTENCE:
  Reconciling an already-balanced row set returns the same amounts.
  Callers re-run it after every committed edit and once more before
  final submission.
*/
package plan

// Row is the reconciliation view of an installment: its current amount
// and whether a human fixed it.
type Row struct {
	Amount int64
	Manual bool
}

// Reconcile recomputes automatic row amounts so the full set sums
// exactly to target. Returns the complete amount vector in original row
// order: manual rows unchanged, automatic rows updated.
//
// On failure the returned slice is nil, no input is mutated, and the
// error describes why the plan cannot balance (see errors.go).
func Reconcile(target int64, rows []Row, minimum int64) ([]int64, error) {
	var manualSum int64
	autoCount := 0
	for _, r := range rows {
		if r.Manual {
			manualSum += r.Amount
		} else {
			autoCount++
		}
	}

	remainder := target - manualSum

	// Every row fixed by hand: the engine has no degrees of freedom left.
	if autoCount == 0 {
		if remainder != 0 {
			return nil, &ManualSumError{ManualTotal: manualSum, Target: target}
		}
		amounts := make([]int64, len(rows))
		for i, r := range rows {
			amounts[i] = r.Amount
		}
		return amounts, nil
	}

	perAuto := floorDiv(remainder, int64(autoCount))
	if perAuto < minimum {
		return nil, &InfeasibleSplitError{
			PerInstallment: perAuto,
			Minimum:        minimum,
			AutoCount:      autoCount,
		}
	}

	amounts := make([]int64, len(rows))
	var distributed int64
	seen := 0
	for i, r := range rows {
		if r.Manual {
			amounts[i] = r.Amount
			continue
		}
		seen++
		if seen == autoCount {
			// Last automatic row absorbs the rounding residue.
			amounts[i] = remainder - distributed
		} else {
			amounts[i] = perAuto
			distributed += perAuto
		}
	}

	// The absorbed residue normally lands at or above perAuto, but a
	// pathological mix of manual values can still undercut the floor.
	for i, r := range rows {
		if !r.Manual && amounts[i] < minimum {
			return nil, &FloorViolationError{Index: i, Amount: amounts[i], Minimum: minimum}
		}
	}

	return amounts, nil
}

// floorDiv divides rounding toward negative infinity. Go's integer
// division truncates toward zero, which would overstate the share when
// manual rows already exceed the target (negative remainder).
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
