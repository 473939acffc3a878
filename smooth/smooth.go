package smooth

import ffbs "github.com/milosgajdos/go-ffbs"

// Backward is backward sampler of forward filter trajectories
type Backward interface {
	// ffbs.Sampler draws latent paths from filter trajectories
	ffbs.Sampler
}
