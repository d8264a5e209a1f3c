// Package fuzztests houses Go fuzz harnesses that push arbitrary bytes through
// the bundled grammars and the tokenizer. Its goal is to guard against panics,
// broken partitions and runaway recursion on any input.
//
// Назначение: загружать байты в FileSet и прогонять их через lexer.TokenizeFile
// для каждой встроенной грамматики, проверяя инварианты testkit.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/source, internal/lexer, internal/languages,
// internal/testkit.

package fuzztests
