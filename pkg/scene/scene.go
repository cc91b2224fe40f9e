// Package scene holds the imported scene graph: node tree, meshes and materials
// as delivered by a scene importer, before conversion into engine pieces.
package scene

// MaxTextureCoords is the number of UV channels a mesh can carry.
const MaxTextureCoords = 2

// TextureType identifies a material texture slot.
type TextureType int

const (
	TextureDiffuse  TextureType = iota // Base color
	TextureSpecular                    // Specular / metallic-roughness
	TextureUnknown                     // Anything the importer could not classify
	TextureNormals                     // Normal map
	TextureEmissive                    // Emission
)

// String returns the texture slot name.
func (t TextureType) String() string {
	switch t {
	case TextureDiffuse:
		return "diffuse"
	case TextureSpecular:
		return "specular"
	case TextureUnknown:
		return "unknown"
	case TextureNormals:
		return "normals"
	case TextureEmissive:
		return "emissive"
	default:
		return "invalid"
	}
}

// Face is one primitive of a mesh. Triangles have three indices; lines and
// points produced from non-triangle primitives have fewer.
type Face struct {
	Indices []uint32
}

// Mesh is a single vertex/face set. All per-vertex slices are either empty or
// the same length as Vertices.
type Mesh struct {
	Name          string
	Vertices      []Vector3D
	Normals       []Vector3D
	Tangents      []Vector3D
	Bitangents    []Vector3D
	TextureCoords [MaxTextureCoords][]Vector3D
	Faces         []Face
	MaterialIndex int
}

// HasNormals reports whether the mesh carries per-vertex normals.
func (m *Mesh) HasNormals() bool {
	return len(m.Normals) > 0 && len(m.Normals) == len(m.Vertices)
}

// HasTangentsAndBitangents reports whether the mesh carries a tangent frame.
func (m *Mesh) HasTangentsAndBitangents() bool {
	return len(m.Tangents) > 0 && len(m.Tangents) == len(m.Vertices) && len(m.Bitangents) == len(m.Tangents)
}

// HasTextureCoords reports whether UV channel i is present.
func (m *Mesh) HasTextureCoords(i int) bool {
	if i < 0 || i >= MaxTextureCoords {
		return false
	}
	return len(m.TextureCoords[i]) > 0 && len(m.TextureCoords[i]) == len(m.Vertices)
}

// Material holds texture paths per slot.
type Material struct {
	Name     string
	Textures map[TextureType][]string
}

// Texture returns the i-th texture path of the given slot, or "".
func (m *Material) Texture(t TextureType, i int) string {
	if m == nil {
		return ""
	}
	paths := m.Textures[t]
	if i < 0 || i >= len(paths) {
		return ""
	}
	return paths[i]
}

// SetTexture appends a texture path to the given slot.
func (m *Material) SetTexture(t TextureType, path string) {
	if m.Textures == nil {
		m.Textures = make(map[TextureType][]string)
	}
	m.Textures[t] = append(m.Textures[t], path)
}

// Node is one element of the scene hierarchy. Meshes indexes Scene.Meshes.
type Node struct {
	Name           string
	Transformation Matrix4x4
	Parent         *Node
	Children       []*Node
	Meshes         []int
}

// NewNode creates a node with an identity transformation.
func NewNode(name string) *Node {
	return &Node{Name: name, Transformation: IdentityMatrix()}
}

// AddChild links child under n.
func (n *Node) AddChild(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// Scene is an imported scene graph.
type Scene struct {
	RootNode  *Node
	Meshes    []*Mesh
	Materials []*Material
}

// NumNodes returns the number of nodes reachable from the root.
func (s *Scene) NumNodes() int {
	if s == nil || s.RootNode == nil {
		return 0
	}
	count := 0
	var walk func(n *Node)
	walk = func(n *Node) {
		count++
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(s.RootNode)
	return count
}
