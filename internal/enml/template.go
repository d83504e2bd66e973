package enml

// noteTemplate is the smallest document the note service accepts as note
// content. See http://dev.evernote.com/documentation/cloud/chapters/ENML.php.
const noteTemplate = `<?xml version="1.0" encoding="UTF-8"?>` +
	`<!DOCTYPE en-note SYSTEM "http://xml.evernote.com/pub/enml2.dtd">` +
	`<en-note>`

// Wrap places an ENML body fragment inside a complete note document.
func Wrap(body string) string {
	return noteTemplate + body + "</en-note>"
}
