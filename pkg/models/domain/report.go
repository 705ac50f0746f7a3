package domain

// ReportDocument is the assembled report before serialization: a title
// followed by an ordered list of sections.
type ReportDocument struct {
	Title    string
	Sections []Section
}

// Section is a heading plus its body blocks.
type Section struct {
	Heading string
	Blocks  []Block
}

// Block is a single body element. Exactly one of Text or Image is set.
type Block struct {
	Text  string
	Image *EmbeddedImage
}

// EmbeddedImage is picture content embedded inline at a fixed display width.
type EmbeddedImage struct {
	Name string
	Data []byte
}

// TextBlock builds a paragraph block.
func TextBlock(text string) Block {
	return Block{Text: text}
}

// ImageBlock builds an inline picture block.
func ImageBlock(name string, data []byte) Block {
	return Block{Image: &EmbeddedImage{Name: name, Data: data}}
}
