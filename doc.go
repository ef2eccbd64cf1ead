// Package main provides the entry point for acctmgr, a membership backend.
// It serves a JSON API on Fiber where users register with an activation code,
// keep platform accounts with layered settings, and administrators mint,
// distribute and export activation codes. Data is stored through gorm.
package main
