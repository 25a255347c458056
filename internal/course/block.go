package course

// BlockType is the kind of node in a course outline. The platform tags
// blocks with free-form strings; parsing them into a closed set lets the
// walker match exhaustively instead of comparing strings.
type BlockType int

const (
	BlockOther BlockType = iota
	BlockCourse
	BlockChapter
	BlockSequential
	BlockVertical
	BlockVideo
)

// ParseBlockType maps a platform type tag to a BlockType. Unrecognized tags
// parse as BlockOther.
func ParseBlockType(tag string) BlockType {
	switch tag {
	case "course":
		return BlockCourse
	case "chapter":
		return BlockChapter
	case "sequential":
		return BlockSequential
	case "vertical":
		return BlockVertical
	case "video":
		return BlockVideo
	default:
		return BlockOther
	}
}

func (t BlockType) String() string {
	switch t {
	case BlockCourse:
		return "course"
	case BlockChapter:
		return "chapter"
	case BlockSequential:
		return "sequential"
	case BlockVertical:
		return "vertical"
	case BlockVideo:
		return "video"
	default:
		return "other"
	}
}

// Block is one node in the course outline.
type Block struct {
	ID             string
	Type           BlockType
	DisplayName    string
	StudentViewURL string
	Children       []string
}

// Outline is a course's content structure: a flat block map keyed by block
// ID, plus the root block's ID.
type Outline struct {
	Root   string
	Blocks map[string]Block
}
