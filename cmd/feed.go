package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/bewatu/internal/filtering"
	"github.com/spigell/bewatu/internal/network"
	"github.com/spigell/bewatu/internal/ranking"
)

const (
	PromptShowFeed     = "Show ranked feed"
	PromptShowCircle   = "Show circle posts"
	PromptShowJobs     = "Show jobs"
	PromptHidePosts    = "Hide posts from the feed"
	PromptFeedToFile   = "Dump feed to file"
	PromptShowFilters  = "Show filters"
	PromptRegenerate   = "Regenerate network"
	PromptExit         = "Exit"
	PromptBack         = "back"
	contentPreviewSize = 80
)

var errExit = errors.New("exit requested")

var feedPrompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptShowFeed, PromptShowCircle, PromptShowJobs, PromptHidePosts, PromptFeedToFile, PromptShowFilters, PromptRegenerate, PromptExit},
}

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show the ranked global feed of the session",
	Run: func(cmd *cobra.Command, _ []string) {
		feed(cmd)
	},
}

func init() {
	rootCmd.AddCommand(feedCmd)

	feedCmd.Flags().BoolP("no-prompt", "n", false, "print the ranked feed once and exit")
	feedCmd.Flags().StringP("hidden-file", "e", "", "file with posts hidden from the feed. Default is unset.")

	viper.BindPFlag("feed.hidden-file", feedCmd.Flags().Lookup("hidden-file"))
}

func feed(cmd *cobra.Command) {
	ctx := context.Background()

	rt := setup(ctx, nil)
	defer rt.close()

	sessionID := rt.config.Session

	posts, data, err := rt.service.Feed(ctx, sessionID)
	if err != nil {
		rt.logger.Fatal("building the feed", zap.Error(err))
	}

	rt.logger.Info("current feed", zap.Int("posts", len(posts)), zap.Int("users", len(data.Users)))

	if cmd.Flag("no-prompt").Value.String() == "true" {
		printPosts(posts, data)
		return
	}

	action := PromptShowFeed
	for {
		if err := handleFeedAction(ctx, action, rt); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			rt.logger.Fatal("exiting", zap.Error(err))
		}

		_, action, err = feedPrompt.Run()
		if err != nil {
			rt.logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleFeedAction(ctx context.Context, action string, rt *runtime) error {
	sessionID := rt.config.Session

	switch action {
	case PromptShowFeed:
		posts, data, err := loadFeed(ctx, rt)
		if err != nil {
			return err
		}
		printPosts(posts, data)
		return nil
	case PromptShowCircle:
		return showCircle(ctx, rt)
	case PromptShowJobs:
		return showJobs(ctx, rt)
	case PromptHidePosts:
		return hidePosts(ctx, rt)
	case PromptFeedToFile:
		posts, _, err := loadFeed(ctx, rt)
		if err != nil {
			return err
		}
		filename, err := network.DumpToTmpFile(posts)
		if err != nil {
			return fmt.Errorf("dump feed to file: %w", err)
		}
		rt.logger.Info("dumping feed to file", zap.String("filename", filename))
		return nil
	case PromptShowFilters:
		pretty, _ := json.MarshalIndent(rt.service.Filters(), "", "  ")
		rt.logger.Info(string(pretty))
		return nil
	case PromptRegenerate:
		if err := rt.service.Reset(ctx, sessionID); err != nil {
			return fmt.Errorf("resetting session: %w", err)
		}
		rt.logger.Info("session cleared, generating a new network", zap.String("session", sessionID))
		posts, data, err := loadFeed(ctx, rt)
		if err != nil {
			return err
		}
		printPosts(posts, data)
		return nil
	case PromptExit:
		rt.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func loadFeed(ctx context.Context, rt *runtime) ([]*network.Post, *network.Data, error) {
	posts, data, err := rt.service.Feed(ctx, rt.config.Session)
	if err != nil {
		return nil, nil, fmt.Errorf("building the feed: %w", err)
	}
	return posts, data, nil
}

func showCircle(ctx context.Context, rt *runtime) error {
	data, err := rt.service.Data(ctx, rt.config.Session)
	if err != nil {
		return err
	}

	items := make([]string, 0, len(data.Circles)+1)
	for _, c := range data.Circles {
		items = append(items, fmt.Sprintf("%d %s (%d members)", c.ID, c.Name, len(c.Members)))
	}

	circlePrompt := promptui.Select{
		Label: "Choose a circle and press ENTER",
		Items: append(items, PromptBack),
	}

	_, selected, err := circlePrompt.Run()
	if err != nil {
		return err
	}

	if selected == PromptBack {
		return nil
	}

	circleID, err := strconv.Atoi(strings.Split(selected, " ")[0])
	if err != nil {
		return fmt.Errorf("there is no such circle %s", selected)
	}

	_, posts, err := rt.service.CirclePostsOf(data, circleID)
	if err != nil {
		return err
	}

	printPosts(posts, data)
	return nil
}

func hidePosts(ctx context.Context, rt *runtime) error {
	hiddenFile := viper.GetString("feed.hidden-file")
	if hiddenFile == "" {
		rt.logger.Warn("hidden file is not configured", zap.String("hint", "set feed.hidden-file or pass --hidden-file"))
		return nil
	}

	for {
		posts, data, err := loadFeed(ctx, rt)
		if err != nil {
			return err
		}

		items := make([]string, 0, len(posts)+1)
		for _, p := range posts {
			items = append(items, postLabel(p, data))
		}

		postPrompt := promptui.Select{
			Label: "Choose a post to hide and press ENTER",
			Items: append(items, PromptBack),
		}

		_, selected, err := postPrompt.Run()
		if err != nil {
			return err
		}

		if selected == PromptBack {
			return nil
		}

		postID, err := strconv.Atoi(strings.Split(selected, " ")[0])
		if err != nil {
			return fmt.Errorf("there is no such post %s", selected)
		}

		hidden, err := filtering.LoadHiddenPosts(hiddenFile)
		if err != nil {
			return err
		}

		hidden.Hide(data.FindPost(postID))

		if err := hidden.ToFile(hiddenFile); err != nil {
			return err
		}

		rt.logger.Info("appended to hidden file", zap.String("filename", hiddenFile), zap.Int("post_id", postID))
	}
}

func postLabel(p *network.Post, data *network.Data) string {
	author := "unknown"
	if u := data.FindUser(p.AuthorID); u != nil {
		author = u.Name
	}

	content := strings.Join(strings.Fields(p.Content), " ")
	if runes := []rune(content); len(runes) > contentPreviewSize {
		content = string(runes[:contentPreviewSize]) + "..."
	}

	return fmt.Sprintf("%d %s / %s / score %.1f / rank %.4f / %s",
		p.ID, author, p.Timestamp, ranking.PostScore(p), ranking.PostRank(p), content,
	)
}

func printPosts(posts []*network.Post, data *network.Data) {
	if len(posts) == 0 {
		fmt.Println("no posts")
		return
	}
	for i, p := range posts {
		fmt.Printf("%2d. %s\n", i+1, postLabel(p, data))
	}
}
