package version

var (
	// GitCommit is the current HEAD set using ldflags.
	GitCommit string

	// Version is the built softwares version.
	Version = LightdSemVer
)

func init() {
	if GitCommit != "" {
		Version += "-" + GitCommit
	}
}

const (
	// LightdSemVer is the current version of lightd.
	// It's the Semantic Version of the software.
	LightdSemVer = "0.1.0"

	// BlockProtocol is the block protocol version of the headers this
	// client verifies.
	BlockProtocol uint64 = 11

	// ClientType is the IBC client type served by lightd.
	ClientType = "07-tendermint"
)
