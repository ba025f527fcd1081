package sadtalker

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestGenerateBuildsInferenceCommand(t *testing.T) {
	svc := NewService(Config{
		Dir:          "/opt/SadTalker",
		Preprocess:   PreprocessFull,
		Still:        true,
		FaceEnhancer: FaceEnhancerGFPGAN,
	})

	var gotDir, gotName string
	var gotArgs []string
	svc.WithCommandRunner(func(_ context.Context, dir, name string, args ...string) error {
		gotDir, gotName, gotArgs = dir, name, args
		return nil
	})

	err := svc.Generate(context.Background(), Request{
		Audio:     "/audio/seg.wav",
		Image:     "/img/daniel.png",
		ResultDir: "/out/scratch",
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if gotDir != "/opt/SadTalker" {
		t.Fatalf("Generate() ran in %q, want the install dir", gotDir)
	}
	if gotName != DefaultPython {
		t.Fatalf("Generate() invoked %q, want %q", gotName, DefaultPython)
	}
	want := "inference.py --driven_audio /audio/seg.wav --source_image /img/daniel.png " +
		"--result_dir /out/scratch --preprocess full --still --enhancer gfpgan"
	if got := strings.Join(gotArgs, " "); got != want {
		t.Fatalf("Generate() args = %q, want %q", got, want)
	}
}

func TestGeneratePoseStyleAndBackgroundEnhancer(t *testing.T) {
	svc := NewService(Config{
		Dir:                "/opt/SadTalker",
		Python:             "python",
		Preprocess:         PreprocessCrop,
		BackgroundEnhancer: BackgroundEnhancerESRGAN,
	})

	var gotArgs []string
	svc.WithCommandRunner(func(_ context.Context, _, _ string, args ...string) error {
		gotArgs = args
		return nil
	})

	if err := svc.Generate(context.Background(), Request{Audio: "a", Image: "i", ResultDir: "r"}); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	joined := strings.Join(gotArgs, " ")
	if !strings.Contains(joined, "--pose") || strings.Contains(joined, "--still") {
		t.Fatalf("pose style missing: %q", joined)
	}
	if !strings.Contains(joined, "--background_enhancer realesrgan") {
		t.Fatalf("background enhancer missing: %q", joined)
	}
	if strings.Contains(joined, "--enhancer ") && !strings.Contains(joined, "--background_enhancer") {
		t.Fatalf("face enhancer should be absent: %q", joined)
	}
}

func TestDisableEnhancersDropsFlags(t *testing.T) {
	svc := NewService(Config{
		Dir:                "/opt/SadTalker",
		FaceEnhancer:       FaceEnhancerRestoreFormer,
		BackgroundEnhancer: BackgroundEnhancerESRGAN,
	})
	if !svc.EnhancersEnabled() {
		t.Fatal("EnhancersEnabled() = false before disabling")
	}
	svc.DisableEnhancers()
	if svc.EnhancersEnabled() {
		t.Fatal("EnhancersEnabled() = true after disabling")
	}

	var gotArgs []string
	svc.WithCommandRunner(func(_ context.Context, _, _ string, args ...string) error {
		gotArgs = args
		return nil
	})
	if err := svc.Generate(context.Background(), Request{Audio: "a", Image: "i", ResultDir: "r"}); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	joined := strings.Join(gotArgs, " ")
	if strings.Contains(joined, "enhancer") {
		t.Fatalf("enhancer flags should be gone, got %q", joined)
	}
}

func TestProbeEnhancersParsesReport(t *testing.T) {
	svc := NewService(Config{Dir: "/opt/SadTalker"})
	svc.WithProbeRunner(func(_ context.Context, name string, args ...string) (string, error) {
		if name != DefaultPython || len(args) != 2 || args[0] != "-c" {
			t.Fatalf("probe invoked %s %v", name, args)
		}
		return `{"ok": true, "errors": {}, "missing_attr": false}` + "\n", nil
	})

	result := svc.ProbeEnhancers(context.Background())
	if !result.Healthy() {
		t.Fatalf("ProbeEnhancers() = %+v, want healthy", result)
	}
}

func TestProbeEnhancersMissingAttrIsUnhealthy(t *testing.T) {
	svc := NewService(Config{Dir: "/opt/SadTalker"})
	svc.WithProbeRunner(func(_ context.Context, _ string, _ ...string) (string, error) {
		return `{"ok": true, "errors": {}, "missing_attr": true}`, nil
	})
	if svc.ProbeEnhancers(context.Background()).Healthy() {
		t.Fatal("missing functional_tensor attribute should be unhealthy")
	}
}

func TestProbeEnhancersFailureIsUnhealthy(t *testing.T) {
	svc := NewService(Config{Dir: "/opt/SadTalker"})
	svc.WithProbeRunner(func(_ context.Context, _ string, _ ...string) (string, error) {
		return "", errors.New("python not found")
	})
	if svc.ProbeEnhancers(context.Background()).Healthy() {
		t.Fatal("probe failure should be unhealthy")
	}

	svc.WithProbeRunner(func(_ context.Context, _ string, _ ...string) (string, error) {
		return "not json", nil
	})
	if svc.ProbeEnhancers(context.Background()).Healthy() {
		t.Fatal("unparsable probe output should be unhealthy")
	}
}
