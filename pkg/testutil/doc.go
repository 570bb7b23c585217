// Package testutil provides utilities for testing archup components.
//
// Key components:
//   - FakeRunner: records commands and returns scripted results, so step
//     tests never touch the host package manager
//   - MockRunner: testify mock for tests that assert exact call sequences
//   - HomeEnv: an isolated $HOME with a dotfiles checkout builder
//
// All test data should be defined inline, not in external files, and each
// test should be completely isolated with no shared state.
package testutil
