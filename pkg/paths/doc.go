// Package paths centralizes path handling for archup: home directory
// resolution, tilde expansion, XDG locations and the account that
// provisioning targets when archup runs under sudo.
package paths
