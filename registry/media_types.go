package registry

// OCI media types and annotation keys for snapshot artifacts.
const (
	// ArtifactType identifies a manifest as a castree snapshot.
	ArtifactType = "application/vnd.castree.snapshot.v1"

	// MediaTypeObject is the media type of each stored object layer
	// (tree or content blob).
	MediaTypeObject = "application/vnd.castree.object.v1"

	// AnnotationRoot holds the digest of the snapshot's root tree.
	AnnotationRoot = "vnd.castree.root"
)
