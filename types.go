package mobi

// Metadata holds the bibliographic fields pulled from the EXTH header.
// A field is empty when the corresponding EXTH record is absent. When an
// EXTH type occurs more than once, the first record wins.
type Metadata struct {
	// Author is EXTH 100.
	Author string

	// Publisher is EXTH 101.
	Publisher string

	// Imprint is EXTH 102.
	Imprint string

	// Description is EXTH 103.
	Description string

	// ISBN is EXTH 104.
	ISBN string

	// Subject is EXTH 105.
	Subject string

	// Date is the publishing date, EXTH 106, as a raw string.
	Date string

	// Contributor is EXTH 108.
	Contributor string

	// Rights is EXTH 109.
	Rights string

	// Type is EXTH 111.
	Type string

	// Source is the source identifier, EXTH 112.
	Source string

	// ASIN is EXTH 113.
	ASIN string

	// CreatorSoftware is EXTH 204, rendered as a decimal number.
	CreatorSoftware string

	// UpdatedTitle is EXTH 503.
	UpdatedTitle string

	// Language is EXTH 524.
	Language string
}

// CoverImage holds the detected cover image data.
type CoverImage struct {
	// RecordIndex is the directory index of the image record.
	RecordIndex int

	// MediaType is the sniffed MIME type of the image (e.g., "image/jpeg").
	MediaType string

	// Data is the raw image bytes.
	Data []byte
}

// RecordIndex is an optional index into the record directory. Header fields
// that use the 0xFFFFFFFF "not present" sentinel are converted to a
// RecordIndex with Valid == false when they are parsed.
type RecordIndex struct {
	Index uint32
	Valid bool
}

// unavailableIndex is the on-disk sentinel for an absent record index.
const unavailableIndex uint32 = 0xFFFFFFFF

func recordIndex(v uint32) RecordIndex {
	if v == unavailableIndex {
		return RecordIndex{}
	}
	return RecordIndex{Index: v, Valid: true}
}

// in reports whether the index is present and addresses one of n records.
func (ri RecordIndex) in(n int) bool {
	return ri.Valid && int64(ri.Index) < int64(n)
}

// RecordInfo is one entry of the Palm database record directory.
type RecordInfo struct {
	// Offset is the absolute byte offset of the record in the file.
	Offset uint32

	// Attributes is the record attribute byte.
	Attributes uint8

	// UniqueID is the 24-bit record identifier.
	UniqueID uint32
}

// PDBHeader is the Palm database preamble and its record directory.
type PDBHeader struct {
	Name               string
	Attributes         uint16
	Version            uint16
	CreationDate       uint32
	ModificationDate   uint32
	LastBackupDate     uint32
	ModificationNumber uint32
	AppInfoID          uint32
	SortInfoID         uint32
	Type               string
	Creator            string
	UniqueIDSeed       uint32
	NextRecordListID   uint32
	Records            []RecordInfo
}

// Compression identifies the body compression scheme.
type Compression uint16

// Compression schemes declared by the document header. CompressionPlain
// and CompressionPalmDOC are both decoded with the PalmDOC byte decoder,
// which leaves plain text bytes (0x09..0x7F) unchanged.
const (
	CompressionPlain    Compression = 1
	CompressionPalmDOC  Compression = 2
	CompressionHuffCDIC Compression = 17480
)

func (c Compression) String() string {
	switch c {
	case CompressionPlain:
		return "plain"
	case CompressionPalmDOC:
		return "palmdoc"
	case CompressionHuffCDIC:
		return "huff/cdic"
	default:
		return "unknown"
	}
}

// PalmDOCHeader is the 16-byte document header at the start of record 0.
type PalmDOCHeader struct {
	Compression Compression
	TextLength  uint32
	RecordCount uint16
	RecordSize  uint16
	Encryption  uint16
}

// MOBIHeader is the format header following the document header in record 0.
// Record index fields that are absent on disk have Valid == false.
type MOBIHeader struct {
	HeaderLength         uint32
	MobiType             uint32
	TextEncoding         uint32
	UniqueID             uint32
	FileVersion          uint32
	FirstNonBookIndex    RecordIndex
	FullNameOffset       uint32
	FullNameLength       uint32
	Locale               uint32
	MinVersion           uint32
	FirstImageIndex      RecordIndex
	HuffmanRecordIndex   RecordIndex
	HuffmanRecordCount   uint32
	EXTHFlags            uint32
	FirstContentRecord   uint16
	LastContentRecord    uint16
	FCISRecordIndex      RecordIndex
	FLISRecordIndex      RecordIndex
	ExtraRecordDataFlags uint32
	INDXRecordIndex      RecordIndex
}

// Text encodings declared by MOBIHeader.TextEncoding.
const (
	EncodingCP1252 uint32 = 1252
	EncodingUTF8   uint32 = 65001
)

// EXTH record types mapped onto Metadata.
const (
	EXTHAuthor          uint32 = 100
	EXTHPublisher       uint32 = 101
	EXTHImprint         uint32 = 102
	EXTHDescription     uint32 = 103
	EXTHISBN            uint32 = 104
	EXTHSubject         uint32 = 105
	EXTHPublishingDate  uint32 = 106
	EXTHContributor     uint32 = 108
	EXTHRights          uint32 = 109
	EXTHType            uint32 = 111
	EXTHSource          uint32 = 112
	EXTHASIN            uint32 = 113
	EXTHCoverOffset     uint32 = 201
	EXTHThumbOffset     uint32 = 202
	EXTHCreatorSoftware uint32 = 204
	EXTHUpdatedTitle    uint32 = 503
	EXTHLanguage        uint32 = 524
)

// EXTHRecord is one tagged entry of the extended metadata header.
type EXTHRecord struct {
	Type uint32
	Data []byte
}

// EXTHHeader is the optional extended metadata header.
type EXTHHeader struct {
	HeaderLength uint32
	Records      []EXTHRecord
}

// INDXHeader is the header of an index record.
type INDXHeader struct {
	HeaderLength uint32
	IndexType    uint32
	IDXTStart    uint32
	IndexCount   uint32
	Encoding     uint32
	Language     uint32
	TotalCount   uint32
	ORDTStart    uint32
	LIGTStart    uint32
}

// FLISRecord is the fixed-layout FLIS flow record.
type FLISRecord struct {
	Length uint32
	Unk1   uint16
	Unk2   uint16
}

// FCISRecord is the fixed-layout FCIS flow record.
type FCISRecord struct {
	Length     uint32
	TextLength uint32
}

// Structure holds every header parsed during decoding.
// Optional sections are nil when absent.
type Structure struct {
	PDB     PDBHeader
	PalmDOC PalmDOCHeader
	MOBI    MOBIHeader
	EXTH    *EXTHHeader
	INDX    *INDXHeader
	FLIS    *FLISRecord
	FCIS    *FCISRecord
}

// record is a directory entry plus its derived byte length.
type record struct {
	info   RecordInfo
	length int64
}
