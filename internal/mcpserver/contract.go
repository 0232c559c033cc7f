package mcpserver

// NoteFormatContract describes the note format that LLM consumers should
// follow when creating or editing notes.
const NoteFormatContract = `# Cuaderno Note Format Contract

Notes are plain ` + "`" + `.md` + "`" + ` or ` + "`" + `.txt` + "`" + ` files under the notebook root.

## Structure

` + "```" + `markdown
---
title: Resumen VLAN
date: 2025-09-10
tags: [Cisco, VLAN, Tarea]
---

# Resumen VLAN

Body text in Markdown.
` + "```" + `

## Rules

1. **The header is optional.** When present, the first line of the file is
   ` + "`" + `---` + "`" + ` and a second ` + "`" + `---` + "`" + ` line closes it.
2. **Keys** are ` + "`" + `title` + "`" + `, ` + "`" + `date` + "`" + ` and ` + "`" + `tags` + "`" + `. Other keys are ignored.
3. **date** is ` + "`" + `YYYY-MM-DD` + "`" + `. Listing by month matches its first seven characters.
4. **tags** is a bracketed, comma-separated list on one line.
5. Without a title the file name is used: ` + "`" + `2025-09-10-Resumen-VLAN.md` + "`" + `
   becomes "Resumen VLAN".
6. The first folder under the root is the category, the second the subcategory.
7. Files whose name starts with ` + "`" + `_` + "`" + `, and files or folders whose name starts
   with ` + "`" + `.` + "`" + `, are never indexed.
8. **Encoding** is UTF-8. UTF-16 files with a byte-order mark are also read.

## Tools

- ` + "`" + `create_note` + "`" + ` writes a dated file with this header for you.
- ` + "`" + `edit_meta` + "`" + ` changes the header: ` + "`" + `title:"Nuevo título" date:2025-09-10 tags:a,b +tag:x -tag:y` + "`" + `.
- ` + "`" + `append_note` + "`" + ` adds text to the end of a note.
- Run ` + "`" + `reindex` + "`" + ` after editing files by other means, so searches see them.
`
