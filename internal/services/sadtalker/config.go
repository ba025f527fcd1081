package sadtalker

// Config captures runtime settings for the animation generator.
type Config struct {
	// Dir is the generator's installation root. Inference always runs
	// with this directory as the process working directory.
	Dir string
	// Python is the interpreter used to launch the generator.
	Python string
	// Preprocess selects the face preprocessing mode (crop, resize, full).
	Preprocess string
	// Still selects minimal head motion instead of full pose animation.
	Still bool
	// FaceEnhancer names the optional face enhancer; empty disables it.
	FaceEnhancer string
	// BackgroundEnhancer names the optional background enhancer; empty
	// disables it.
	BackgroundEnhancer string
}

// Generator configuration constants.
const (
	InferenceScript = "inference.py"
	DefaultPython   = "python3"

	PreprocessCrop   = "crop"
	PreprocessResize = "resize"
	PreprocessFull   = "full"

	FaceEnhancerGFPGAN        = "gfpgan"
	FaceEnhancerRestoreFormer = "RestoreFormer"
	BackgroundEnhancerESRGAN  = "realesrgan"
)
