// Package textutil provides small text helpers shared by the CLI and
// notification layers, chiefly the derivation of episode display titles
// from decade tokens.
package textutil
