// Package testutil holds helpers shared by tests across packages.
package testutil
