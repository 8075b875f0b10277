package geo

// EvaluateProduct runs the full readiness pipeline for a product: signals per
// unit, issue detection, unit confidence, then the product-level rollup. It is
// pure and total; identical input always yields identical output. Units are
// evaluated in input order and the product issue list is the unit issues in
// that order followed by missing-coverage issues in canonical question order.
func EvaluateProduct(productID string, units []AnswerUnit, meta ProductMeta) ProductEvaluation {
	unitEvals := make([]AnswerUnitEvaluation, 0, len(units))
	var productIssues []Issue

	for _, unit := range units {
		signals := EvaluateSignals(unit, meta)
		issues := DetectIssues(unit, signals)
		unitEvals = append(unitEvals, AnswerUnitEvaluation{
			UnitID:             unit.UnitID,
			QuestionID:         unit.QuestionID,
			Signals:            signals,
			Issues:             issues,
			CitationConfidence: UnitConfidence(signals, issues),
		})
		productIssues = append(productIssues, issues...)
	}

	coverage := DetectMissingCoverage(units)
	productIssues = append(productIssues, coverage...)

	return ProductEvaluation{
		ProductID:          productID,
		AnswerUnits:        unitEvals,
		Issues:             productIssues,
		CitationConfidence: ProductConfidence(unitEvals, len(coverage) == 0),
	}
}
