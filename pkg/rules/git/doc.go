// Package git loads rule files from a Git repository.
//
// A Source clones the repository on first use and serves every rule
// load from the local checkout, so evaluation never blocks on the
// network. A Poller pulls at a fixed interval and invokes a reload
// callback when HEAD moves; failed pulls and failed reloads keep the
// previous checkout and rule set active.
package git
