// Command rsvp is a terminal speed reader. It shows text one word at a time
// at a steady pace, pausing longer on punctuation and headings.
//
// Sources may be plain text or Markdown files, EPUB books, web pages fetched
// through the fetch service (RSVP_API_URL), or standard input.
package main
