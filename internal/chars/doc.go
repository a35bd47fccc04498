// Package chars annotates a rune stream with positions.
//
// An Annotator pulls runes from an io.RuneReader and hands out one Char per
// call to Next. Each Char carries the rune, its encoded width and how many
// bytes and runes precede it. After the last rune the Annotator produces a
// single Char of kind End whose offsets are the totals of the input; every
// later call to Next reports false.
//
// End is a separate kind, not a reserved rune value, so any rune (including
// U+0000 and U+FFFF) is valid input.
package chars
