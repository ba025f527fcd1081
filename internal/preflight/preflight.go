package preflight

import (
	"strings"

	"github.com/dcschmid/melodymind-podcast-pipeline/internal/config"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/segments"
	"github.com/dcschmid/melodymind-podcast-pipeline/internal/services"
)

// Result reports the outcome of a single preflight check. Optional checks
// inform status output but never abort a run.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// RunAll executes all applicable preflight checks for the given config and
// layout. Decade-scoped checks (audio directory, portraits) run only when
// the layout carries a decade.
func RunAll(cfg *config.Config, layout segments.Layout) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	for _, status := range CheckSystemDeps(cfg) {
		results = append(results, Result{
			Name:     status.Name,
			Passed:   status.Available,
			Optional: status.Optional,
			Detail:   status.Detail,
		})
	}

	results = append(results, CheckGeneratorInstall(cfg))
	results = append(results, CheckDirectoryCreatable("Outputs directory", cfg.Paths.OutputsDir))

	if layout.Decade != "" {
		results = append(results, CheckDirectoryAccess("Audio directory", layout.SourceAudioDir()))
		for _, p := range segments.Participants() {
			results = append(results, CheckFileReadable(portraitCheckName(p), layout.Portrait(p)))
		}
	}

	results = append(results, coverAssetChecks(cfg)...)
	return results
}

// Fatal converts failed required checks into a single error, nil when the
// environment is usable.
func Fatal(results []Result) error {
	var failed []string
	for _, result := range results {
		if result.Passed || result.Optional {
			continue
		}
		failed = append(failed, result.Name+": "+result.Detail)
	}
	if len(failed) == 0 {
		return nil
	}
	return services.Wrap(services.ErrNotFound, "preflight", "check", strings.Join(failed, "; "), nil)
}

func portraitCheckName(p segments.Participant) string {
	return strings.ToUpper(string(p)[:1]) + string(p)[1:] + " portrait"
}

func coverAssetChecks(cfg *config.Config) []Result {
	var results []Result
	add := func(name, path string) {
		if strings.TrimSpace(path) == "" {
			return
		}
		check := CheckFileReadable(name, path)
		check.Optional = true
		results = append(results, check)
	}
	add("Intro cover image", cfg.Covers.IntroImage)
	add("Intro cover audio", cfg.Covers.IntroAudio)
	add("Outro cover image", cfg.Covers.OutroImage)
	add("Outro cover audio", cfg.Covers.OutroAudio)
	return results
}
