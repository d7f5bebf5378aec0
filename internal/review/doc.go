// Package review contains the core types and the line-based rule engine.
//
// A [Rule] pairs a [Matcher] with a severity, category and message. Rules are
// collected into an immutable [RuleSet]; the built-in set is returned by
// [Builtin] and can be customized with a YAML [RulePack] (extra rules,
// disabled IDs, severity overrides by rule or category).
//
// [FindIssues] applies every rule to every line and returns issues in
// ascending line order, keeping rule registration order for issues on the
// same line. Matching is line-scoped: no state is carried between lines, so
// the same content always yields the same issues.
//
// [SplitLines] is the input boundary. It rejects NUL bytes and invalid UTF-8
// with an [InputError]. Bad rule definitions fail at construction time with a
// [ConfigError]; scanning itself never fails.
//
// [AnalyzeAll] analyzes many files in parallel with bounded concurrency and
// returns results in input order.
package review
