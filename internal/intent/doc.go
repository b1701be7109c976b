// Package intent scores short human feedback for valence and aggregates it
// across a conversation.
//
// A Scorer looks phrases up in a Lexicon of weighted cues. Idioms such as
// "finally" or "no problem" are matched first and hide their words from cue
// lookup. A negator ("not", "didn't", "no") up to NegationWindow tokens before
// a cue in the same clause flips positive and negative. A phrase without any
// cue scores (neutral, 0.3); equal positive and negative evidence scores
// (neutral, 0.0).
//
// An Aggregator folds the scores of user turns with a recency WeightFunc.
// Assistant turns are skipped unless a custom turn filter is installed.
//
//	agg := intent.NewAggregator(intent.NewScorer(nil))
//	analysis, err := agg.AnalyzeConversation(intent.Indexed(turns))
package intent
