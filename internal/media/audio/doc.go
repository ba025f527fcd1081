// Package audio prepares segment audio: canonical 16 kHz mono conversion
// and silent partner synthesis by muting the reference track. Both
// operations are existence-gated so reruns are free.
package audio
