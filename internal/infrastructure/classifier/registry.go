package classifier

import (
	"regexp"

	"github.com/kirillkom/examdocs/internal/core/domain"
)

// categoryEntry is one row of the open-ended category lookup table.
// Registration order is the tie-break for equal scores and must stay fixed;
// marksheet is registered before class10_certificate so filenames carrying
// both "10th" and "marksheet" evidence resolve to marksheet.
type categoryEntry struct {
	id       domain.DocumentCategory
	label    string
	keywords []string
	patterns []*regexp.Regexp
}

type levelEntry struct {
	id       domain.EducationLevel
	label    string
	keywords []string
	patterns []*regexp.Regexp
}

func rx(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile(e))
	}
	return out
}

var categories = []categoryEntry{
	{
		id:    "photograph",
		label: "Photo",
		keywords: []string{
			"photo", "photograph", "image", "picture", "pic",
			"passport size", "headshot", "passport photo", "passport photograph",
		},
		patterns: rx(
			`photo(?:graph)?`,
			`image`,
			`picture`,
			`passport\s*(?:size|photo)`,
			`headshot`,
		),
	},
	{
		id:    "postcard_photograph",
		label: "PostcardPhoto",
		keywords: []string{
			"postcard photo", "postcard photograph", "postcard size photo",
		},
		patterns: rx(
			`postcard\s*(?:photo|photograph)`,
			`postcard\s*size`,
		),
	},
	{
		id:    "signature",
		label: "Signature",
		keywords: []string{
			"signature", "sign", "autograph", "signed", "sig",
		},
		patterns: rx(
			`signature`,
			`sign(?:ed)?`,
			`autograph`,
			`\bsig\b`,
		),
	},
	{
		id:    "marksheet",
		label: "Marksheet",
		keywords: []string{
			"marksheet", "mark sheet", "marks card", "grade sheet", "statement of marks",
		},
		patterns: rx(
			`marks?\s*sheet`,
			`marks\s*card`,
			`grade\s*sheet`,
			`statement\s*of\s*marks`,
		),
	},
	{
		id:    "class10_certificate",
		label: "Class10Certificate",
		keywords: []string{
			"class 10", "10th", "tenth", "x class", "sslc", "matriculation",
			"class10", "class-10", "10 class",
		},
		patterns: rx(
			`class\s*10`,
			`10th?`,
			`tenth`,
			`x\s*class`,
			`sslc`,
			`matriculation`,
		),
	},
	{
		id:    "category_certificate",
		label: "CategoryCertificate",
		keywords: []string{
			"caste certificate", "category certificate", "reservation certificate",
			"obc", "sc", "st", "ews", "minority", "pwd", "disability",
		},
		patterns: rx(
			`caste\s*certificate`,
			`category\s*certificate`,
			`reservation\s*certificate`,
			`obc|ews`,
			`minority\s*certificate`,
			`pwd|disability`,
		),
	},
	{
		id:    "caste_or_pwd_certificate",
		label: "CasteOrPwdCertificate",
		keywords: []string{
			"caste certificate", "pwd certificate", "disability certificate",
			"reservation certificate", "category certificate",
		},
		patterns: rx(
			`caste\s*certificate`,
			`pwd\s*certificate`,
			`disability\s*certificate`,
			`reservation\s*certificate`,
		),
	},
	{
		id:    "finger_thumb_impressions",
		label: "FingerThumbImpressions",
		keywords: []string{
			"finger impression", "thumb impression", "fingerprint",
			"thumb print", "finger print",
		},
		patterns: rx(
			`finger\s*(?:impression|print)`,
			`thumb\s*(?:impression|print)`,
			`fingerprint`,
		),
	},
	{
		id:    "address_proof",
		label: "AddressProof",
		keywords: []string{
			"address proof", "address certificate", "domicile",
			"residence proof", "residential certificate",
		},
		patterns: rx(
			`address\s*(?:proof|certificate)`,
			`domicile`,
			`residence\s*proof`,
			`residential\s*certificate`,
		),
	},
	{
		id:    "photo_id_proof",
		label: "PhotoIDProof",
		keywords: []string{
			"photo id", "identity proof", "id proof", "aadhar", "aadhaar",
			"pan card", "voter id", "passport", "driving license",
		},
		patterns: rx(
			`photo\s*id`,
			`identity\s*proof`,
			`id\s*proof`,
			`aa?dh?aa?r`,
			`pan\s*card`,
			`voter\s*id`,
			`passport`,
			`driving\s*licen[cs]e`,
		),
	},
	{
		id:    "certificates_academic_or_category",
		label: "AcademicCertificate",
		keywords: []string{
			"academic certificate", "degree certificate", "graduation certificate",
			"category certificate", "educational certificate",
		},
		patterns: rx(
			`academic\s*certificate`,
			`degree\s*certificate`,
			`graduation\s*certificate`,
			`educational\s*certificate`,
		),
	},
}

var levels = []levelEntry{
	{
		id:       "10th",
		label:    "10th",
		keywords: []string{"10th", "tenth", "class 10", "x class", "sslc", "matriculation"},
		patterns: rx(
			`10th?`,
			`tenth`,
			`class\s*10`,
			`x\s*class`,
			`sslc`,
			`matriculation`,
		),
	},
	{
		id:       "12th",
		label:    "12th",
		keywords: []string{"12th", "twelfth", "class 12", "xii class", "intermediate", "higher secondary"},
		patterns: rx(
			`12th?`,
			`twelfth`,
			`class\s*12`,
			`xii\s*class`,
			`intermediate`,
			`higher\s*secondary`,
		),
	},
	{
		id:       "graduation",
		label:    "Graduation",
		keywords: []string{"graduation", "bachelor", "b.tech", "b.sc", "b.com", "b.a", "undergraduate"},
		patterns: rx(
			`graduation`,
			`bachelor`,
			`b\.?tech`,
			`b\.?sc`,
			`b\.?com`,
			`b\.?a`,
			`undergraduate`,
		),
	},
}

func categoryLabel(id domain.DocumentCategory) string {
	for _, c := range categories {
		if c.id == id {
			return c.label
		}
	}
	return "Document"
}
