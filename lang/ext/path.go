package ext

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/mung"
)

// PathModule returns the "path" module editing PATH-like lists.
func PathModule() Module {
	const args = "the list (unless piped), then the items to prefix"

	return Module{
		Name:        "path",
		Description: "PATH-like list functions",
		Functions: []Function{
			{
				Name:        "prefix",
				Description: "move or add items to the front of a list",
				Args:        args,
				Pipe:        true,
				Fn:          prefixList(nil),
			},
			{
				Name:        "prefix_dirs",
				Description: "like prefix, keeping only existing directories",
				Args:        args,
				Pipe:        true,
				Fn:          prefixList(isDir),
			},
		},
	}
}

func prefixList(keep func(string) bool) Func {
	return func(_ context.Context, call *Call) (Value, error) {
		args := call.Args

		var subject string

		switch {
		case call.Result != nil:
			subject = Concat(call.Result)
		case len(args) > 0:
			s, err := resolve(call, args[0])
			if err != nil {
				return nil, err
			}

			subject, args = s, args[1:]
		default:
			return nil, ErrArgument.With(
				slog.String("reason", "no piped value and no argument"),
			)
		}

		prefix := make([]string, len(args))
		for i, a := range args {
			s, err := resolve(call, a)
			if err != nil {
				return nil, err
			}

			prefix[i] = s
		}

		if keep == nil {
			return Text(mung.Make(
				mung.WithSubjectItems(subject),
				mung.WithDelim(string(os.PathListSeparator)),
				mung.WithPrefixItems(prefix...),
			).String()), nil
		}

		return Text(mung.Make(
			mung.WithSubjectItems(subject),
			mung.WithDelim(string(os.PathListSeparator)),
			mung.WithPrefixItems(prefix...),
			mung.WithFilter(keep),
		).String()), nil
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}
