// Package alerts moves alert readings in and out of the classifier.
//
// It reads alert sets from CSV and JSONL sources, writes plain and
// classified sets back to CSV, and generates synthetic wildfire alert
// data for demos and benchmarks.
//
// # Field Contract
//
// An alert carries a timestamp and a zone label for reporting plus an
// open bag of fields for evaluation. The conventional wildfire fields
// are temp, hum, and wind (numeric) and event_type (string), but the
// readers preserve whatever columns the source has: rules decide which
// fields matter. Values that do not parse as numbers stay strings;
// empty cells are omitted so the absent field fails conditions instead
// of matching as zero.
package alerts
