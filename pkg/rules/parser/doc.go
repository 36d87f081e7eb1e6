// Package parser decodes rule documents into the rules data model.
//
// Two encodings are supported. The canonical interchange form is a JSON
// array of rule objects:
//
//	[
//	  {"id": "FIRE_CRITICAL_01", "priority": 1,
//	   "description": "temp > 40 and hum < 20",
//	   "conditions": [
//	     {"field": "temp", "operator": ">", "value": 40},
//	     {"field": "hum", "operator": "<", "value": 20}
//	   ],
//	   "result": {"risk": "CRITICAL", "action": "Immediate mobilization"}}
//	]
//
// The YAML form carries the same rule objects, either as a bare sequence
// or under a top-level "rules:" key. Numeric operands normalize to
// float64 in both encodings so downstream comparison and fingerprinting
// never depend on the source format.
//
// The parser checks decodability and field presence only; correctness
// (recognized operators, operand kinds) belongs to the validator package.
package parser
