package schema

// Node types used by the closed render dispatch. Containers group children
// and draw nothing of their own; anything else is a leaf.
const (
	TypePage      = "page"
	TypeContainer = "container"
	TypeRow       = "row"
	TypeColumn    = "column"
	TypeSection   = "section"
	TypeList      = "list"
	TypeText      = "text"
	TypeButton    = "button"
	TypeImage     = "image"
	TypeSpacer    = "spacer"
	TypeWidget    = "widget"
)

// Subtypes of specialized widget blocks referenced by the SDK itself.
const (
	SubtypeEmailInvitations = "email-invitations"
	SubtypeShareLink        = "share-link"
	SubtypeQRCode           = "qr-code"
	SubtypeContactsList     = "contacts-list"
	SubtypeFindFriends      = "find-friends"
	SubtypeSuggestions      = "suggestions"
)

var containerTypes = map[string]bool{
	TypePage:      true,
	TypeContainer: true,
	TypeRow:       true,
	TypeColumn:    true,
	TypeSection:   true,
	TypeList:      true,
}

// Node is one element of the server-authored tree. Child order is layout
// order.
type Node struct {
	ID         string           `json:"id"`
	Type       string           `json:"type"`
	Subtype    string           `json:"subtype,omitempty"`
	Attributes map[string]Value `json:"attributes,omitempty"`
	Style      map[string]string `json:"style,omitempty"`
	Theme      *Theme           `json:"theme,omitempty"`
	Settings   *Settings        `json:"settings,omitempty"`
	Children   []*Node          `json:"children,omitempty"`
	Hidden     bool             `json:"hidden,omitempty"`
	Group      string           `json:"group,omitempty"`
}

// Settings carries the behavioral knobs a node may declare.
type Settings struct {
	Action         string           `json:"action,omitempty"`
	Size           string           `json:"size,omitempty"`
	Options        map[string]Value `json:"options,omitempty"`
	Customizations map[string]Value `json:"customizations,omitempty"`
}

// IsContainer reports whether the node's type groups children.
func (n *Node) IsContainer() bool {
	if n == nil {
		return false
	}
	return containerTypes[n.Type]
}

// Visible reports whether the node should render at all: not explicitly
// hidden, not excluded by an active group filter, and, for containers,
// still owning at least one visible child after filtering. An invisible
// node renders as nothing, never as an empty container.
func (n *Node) Visible(hiddenGroups map[string]bool) bool {
	if n == nil || n.Hidden {
		return false
	}
	if n.Group != "" && hiddenGroups[n.Group] {
		return false
	}
	if n.IsContainer() && len(n.VisibleChildren(hiddenGroups)) == 0 {
		return false
	}
	return true
}

// VisibleChildren returns the node's children that survive filtering, in
// layout order.
func (n *Node) VisibleChildren(hiddenGroups map[string]bool) []*Node {
	if n == nil || len(n.Children) == 0 {
		return nil
	}
	visible := make([]*Node, 0, len(n.Children))
	for _, child := range n.Children {
		if child.Visible(hiddenGroups) {
			visible = append(visible, child)
		}
	}
	return visible
}

// FindFirst walks the subtree depth-first in document order and returns the
// first node matching pred, or nil.
func (n *Node) FindFirst(pred func(*Node) bool) *Node {
	if n == nil {
		return nil
	}
	if pred(n) {
		return n
	}
	for _, child := range n.Children {
		if found := child.FindFirst(pred); found != nil {
			return found
		}
	}
	return nil
}

// FindBySubtype locates the first descendant with the given subtype. This is
// how specialized blocks such as the email-invitations widget are resolved.
func (n *Node) FindBySubtype(subtype string) *Node {
	return n.FindFirst(func(node *Node) bool { return node.Subtype == subtype })
}

// FindByID locates the first descendant with the given id.
func (n *Node) FindByID(id string) *Node {
	return n.FindFirst(func(node *Node) bool { return node.ID == id })
}

// AttrString reads a string attribute.
func (n *Node) AttrString(key string) (string, bool) {
	if n == nil {
		return "", false
	}
	return n.Attributes[key].AsString()
}

// AttrBool reads a boolean attribute.
func (n *Node) AttrBool(key string) (bool, bool) {
	if n == nil {
		return false, false
	}
	return n.Attributes[key].AsBool()
}

// AttrInt reads an integer attribute.
func (n *Node) AttrInt(key string) (int64, bool) {
	if n == nil {
		return 0, false
	}
	return n.Attributes[key].AsInt()
}
