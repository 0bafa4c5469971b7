package config

// PluginInfo holds the static catalogue metadata of the published plugin.
type PluginInfo struct {
	GUID           string
	Name           string
	Description    string
	Overview       string
	Category       string
	TargetABI      string
	ArtifactPrefix string
}

var Plugin = PluginInfo{
	GUID:           "9a19103f-16f7-4668-be54-9a1e7a4f7556",
	Name:           "MetaShark",
	Description:    "jellyfin电影元数据插件，影片信息只要从豆瓣获取，并由TMDB补充缺失的剧集数据。",
	Overview:       "jellyfin电影元数据插件",
	Category:       "Metadata",
	TargetABI:      "10.10.0.0",
	ArtifactPrefix: "metashark",
}

const (
	// ManifestReleaseTag is the release the catalogue files are attached to.
	ManifestReleaseTag = "manifest"

	ManifestFileName       = "manifest.json"
	MirrorManifestFileName = "manifest_cn.json"
)
