// Package skills serves markdown skill documents to the agent.
//
// Skills live under a root directory, one directory per skill with a
// SKILL.md entry point and optional sub-skill files. The use_skill tool
// returns raw markdown; Status reports each skill's YAML front matter so
// the agent can see what is available without loading everything.
package skills
