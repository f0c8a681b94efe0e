package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pyomin/bluecool-admin/internal/alert"
	"github.com/pyomin/bluecool-admin/internal/cache"
	"github.com/pyomin/bluecool-admin/internal/config"
	"github.com/pyomin/bluecool-admin/internal/document"
	"github.com/pyomin/bluecool-admin/internal/domain"
	"github.com/pyomin/bluecool-admin/internal/editor"
	"github.com/pyomin/bluecool-admin/internal/preview"
	"github.com/pyomin/bluecool-admin/internal/routes"
	"github.com/pyomin/bluecool-admin/internal/service"
	"github.com/pyomin/bluecool-admin/internal/token"
)

type shellServices struct {
	posts     service.PostService
	auth      service.AuthService
	comments  service.CommentService
	users     service.UserService
	category  service.CategoryService
	analytics service.AnalyticsService
	ai        service.AIService
	uploader  editor.Uploader
	bridge    *preview.Bridge
}

// shell is the interactive front of the console. It owns no business
// rules; every command delegates to a service and the screens follow
// the route registry.
type shell struct {
	cfg    *config.Config
	reg    *routes.Registry
	alerts *alert.Hub
	cache  *cache.Cache
	tokens *token.Store
	svc    shellServices

	out   io.Writer
	lines chan string

	// editing state, present only on /posts/:postId/edit
	ed      *editor.Editor
	editing *domain.Post
	title   string
	publish domain.PublishData
}

func newShell(cfg *config.Config, reg *routes.Registry, alerts *alert.Hub, store *cache.Cache, tokens *token.Store, svc shellServices) *shell {
	s := &shell{
		cfg:    cfg,
		reg:    reg,
		alerts: alerts,
		cache:  store,
		tokens: tokens,
		svc:    svc,
		out:    os.Stdout,
	}
	reg.OnChange(s.onRoute)
	return s
}

// Run pumps alerts and stdin until the context ends or stdin closes
func (s *shell) Run(ctx context.Context) error {
	alertCh, cancelAlerts := s.alerts.Subscribe()
	defer cancelAlerts()
	go func() {
		for a := range alertCh {
			fmt.Fprintf(s.out, "[%s] %s\n", a.Severity, a.Message)
		}
	}()

	fmt.Fprintf(s.out, "bluecool admin console — %s\n", s.cfg.APIBaseURL)
	fmt.Fprintln(s.out, `명령어는 "help" 를 입력하세요.`)

	s.lines = make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			s.lines <- scanner.Text()
		}
		close(s.lines)
	}()

	for {
		fmt.Fprintf(s.out, "%s> ", s.reg.Current().Path)
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-s.lines:
			if !ok {
				return nil
			}
			if strings.TrimSpace(line) == "quit" {
				return nil
			}
			s.execute(ctx, line)
		}
	}
}

// onRoute attaches and detaches the editor as the edit screen comes
// and goes; navigating away destroys the editor instance.
func (s *shell) onRoute(m routes.Match) {
	if m.Route.Pattern == "/posts/:postId/edit" {
		s.openEditor(context.Background(), m.Params["postId"])
		return
	}
	if s.ed != nil {
		s.ed = nil
		s.editing = nil
		s.svc.bridge.Close()
	}
}

func (s *shell) openEditor(ctx context.Context, id string) {
	post, err := s.svc.posts.Get(ctx, id)
	if err != nil {
		fmt.Fprintf(s.out, "글을 불러오지 못했습니다: %v\n", err)
		return
	}

	ed := editor.New(s.svc.uploader)
	if post.ContentJSON != "" {
		err = ed.LoadJSON(post.ContentJSON)
	} else {
		err = ed.Load(post.Content)
	}
	if err != nil {
		fmt.Fprintf(s.out, "본문을 불러오지 못했습니다: %v\n", err)
		return
	}

	s.ed = ed
	s.editing = &post
	s.title = post.Title
	s.publish = domain.PublishData{
		Slug:        post.PublishInfo.Slug,
		Description: post.PublishInfo.Description,
		CategoryID:  post.PublishInfo.Category.ID,
		Status:      post.PublishInfo.Status,
	}
	s.pushPreview()
}

func (s *shell) pushPreview() {
	if s.ed == nil || s.editing == nil {
		return
	}
	s.svc.bridge.SetData(preview.Data{
		Title:     s.title,
		Content:   s.ed.Content().HTML,
		Category:  s.editing.PublishInfo.Category.Name,
		CreatedAt: s.editing.CreatedAt,
	})
}

func (s *shell) execute(ctx context.Context, line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	cmd, args := fields[0], fields[1:]
	rest := strings.TrimSpace(strings.TrimPrefix(line, cmd))

	switch cmd {
	case "help":
		s.printHelp()
	case "go":
		if len(args) == 1 {
			s.reg.NavigateTo(args[0])
		}
	case "login":
		s.cmdLogin(ctx, args)
	case "logout":
		if err := s.svc.auth.Logout(ctx); err != nil {
			fmt.Fprintf(s.out, "로그아웃 실패: %v\n", err)
		}
	case "dashboard":
		s.cmdDashboard(ctx)
	case "posts":
		s.cmdPosts(ctx, args)
	case "new":
		if _, err := s.svc.posts.CreateDraft(ctx); err != nil {
			fmt.Fprintf(s.out, "생성 실패: %v\n", err)
		}
	case "open":
		if len(args) == 1 {
			s.reg.NavigateTo("/posts/" + args[0] + "/edit")
		}
	case "delete":
		if len(args) == 1 && s.confirm("글 "+args[0]+"을(를) 삭제할까요?") {
			s.svc.posts.Delete(ctx, args[0]) //nolint:errcheck
		}
	case "comments":
		s.cmdComments(ctx)
	case "hide", "show":
		s.cmdCommentStatus(ctx, cmd, args)
	case "delc":
		if len(args) == 1 && s.confirm("댓글 "+args[0]+"을(를) 삭제할까요?") {
			s.cmdCommentStatus(ctx, cmd, args)
		}
	case "reply":
		if len(args) >= 2 {
			s.svc.comments.Reply(ctx, args[0], strings.Join(args[1:], " ")) //nolint:errcheck
		}
	case "users":
		s.cmdUsers(ctx)
	case "useradd":
		s.cmdUserAdd(ctx, args)
	case "usermod":
		s.cmdUserMod(ctx, args)
	case "userdel":
		if len(args) == 1 && s.confirm("계정 "+args[0]+"을(를) 삭제할까요?") {
			s.svc.users.Delete(ctx, args[0]) //nolint:errcheck
		}
	case "profile":
		s.cmdProfile(ctx, args)
	case "theme":
		s.cmdTheme(args)
	case "categories":
		s.cmdCategories(ctx)
	case "suggest":
		s.cmdSuggest(ctx, args)

	// Editor commands
	case "title":
		s.cmdTitle(rest)
	case "type":
		// The raw remainder keeps trailing spaces, which complete
		// markdown markers
		raw := strings.TrimPrefix(strings.TrimPrefix(strings.TrimLeft(line, " "), cmd), " ")
		if raw != "" {
			s.edDispatch(editor.InsertText{Text: raw})
		}
	case "enter":
		s.edDispatch(editor.InsertParagraph{})
	case "bold", "italic", "underline", "strike", "code":
		s.edDispatch(editor.ToggleFormat{Format: cmd})
	case "h1", "h2", "h3":
		level := int(cmd[1] - '0')
		s.edDispatch(editor.SetBlockType{Type: document.BlockHeading, Level: level})
	case "para":
		s.edDispatch(editor.SetBlockType{Type: document.BlockParagraph})
	case "quote":
		s.edDispatch(editor.SetBlockType{Type: document.BlockQuote})
	case "list":
		s.cmdList(args)
	case "align":
		if len(args) == 1 {
			s.edDispatch(editor.SetAlignment{Align: args[0]})
		}
	case "lang":
		if len(args) == 1 {
			s.edDispatch(editor.SetCodeLanguage{Language: args[0]})
		}
	case "link":
		if len(args) == 1 {
			s.edDispatch(editor.InsertLink{Href: args[0], Target: "_blank"})
		}
	case "image":
		s.cmdImage(ctx, args)
	case "undo":
		s.edDo(func(ed *editor.Editor) error { return ed.Undo() })
	case "redo":
		s.edDo(func(ed *editor.Editor) error { return ed.Redo() })
	case "slug":
		s.publish.Slug = rest
	case "desc":
		s.publish.Description = rest
	case "cat":
		if len(args) == 1 {
			s.publish.CategoryID, _ = strconv.Atoi(args[0])
		}
	case "save":
		s.cmdSave(ctx, "draft")
	case "publish":
		s.cmdSave(ctx, "publish")
	case "archive":
		s.cmdSave(ctx, "archive")

	default:
		fmt.Fprintf(s.out, "알 수 없는 명령: %s\n", cmd)
	}
}

func (s *shell) cmdLogin(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "usage: login <id> <password> [remember]")
		return
	}
	req := domain.LoginRequest{
		LoginID:  args[0],
		Password: args[1],
		Remember: len(args) > 2 && args[2] == "remember",
	}
	s.svc.auth.Login(ctx, req) //nolint:errcheck
}

func (s *shell) cmdDashboard(ctx context.Context) {
	dash, err := s.svc.analytics.Dashboard(ctx)
	if err != nil {
		fmt.Fprintf(s.out, "대시보드 조회 실패: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "글 %d · 댓글 %d · 오늘 조회 %d · 오늘 방문 %d\n",
		dash.Summary.TotalPosts, dash.Summary.TotalComments,
		dash.Summary.TodayViews, dash.Summary.TodayVisitors)
	for _, p := range dash.WeeklyTopPosts {
		fmt.Fprintf(s.out, "  TOP %s (%d views)\n", p.Title, p.Views)
	}
}

func (s *shell) cmdPosts(ctx context.Context, args []string) {
	q := domain.PostListQuery{Page: 1}
	if len(args) > 0 {
		q.Page, _ = strconv.Atoi(args[0])
	}
	if len(args) > 1 {
		q.Search = args[1]
	}
	list, err := s.svc.posts.List(ctx, q)
	if err != nil {
		fmt.Fprintf(s.out, "목록 조회 실패: %v\n", err)
		return
	}
	for _, p := range list.Items {
		fmt.Fprintf(s.out, "  [%s] %s — %s\n", p.PublishInfo.Status, p.ID, p.Title)
	}
	fmt.Fprintf(s.out, "page %d/%d (%d개)\n", list.Page, list.LastPage, list.Total)
}

func (s *shell) cmdComments(ctx context.Context) {
	list, err := s.svc.comments.List(ctx, domain.CommentListQuery{Page: 1})
	if err != nil {
		fmt.Fprintf(s.out, "댓글 조회 실패: %v\n", err)
		return
	}
	for i := range list.Items {
		c := &list.Items[i]
		fmt.Fprintf(s.out, "  [%s] %s (%s): %s\n", c.Status, c.ID, c.Nickname, c.DisplayContent())
	}
}

func (s *shell) cmdCommentStatus(ctx context.Context, cmd string, args []string) {
	if len(args) != 1 {
		return
	}
	status := map[string]domain.CommentStatus{
		"hide": domain.CommentHidden,
		"show": domain.CommentPublished,
		"delc": domain.CommentDeleted,
	}[cmd]
	s.svc.comments.UpdateStatus(ctx, args[0], status) //nolint:errcheck
}

func (s *shell) cmdUsers(ctx context.Context) {
	users, err := s.svc.users.List(ctx)
	if err != nil {
		fmt.Fprintf(s.out, "계정 조회 실패: %v\n", err)
		return
	}
	for i := range users {
		u := &users[i]
		locked := ""
		if u.Locked() {
			locked = " (잠김)"
		}
		fmt.Fprintf(s.out, "  %s %s [%s]%s\n", u.ID, u.Nickname, u.Role, locked)
	}
}

func (s *shell) cmdCategories(ctx context.Context) {
	options, err := s.svc.category.Options(ctx)
	if err != nil {
		fmt.Fprintf(s.out, "카테고리 조회 실패: %v\n", err)
		return
	}
	for _, o := range options {
		marker := " "
		if !o.Selectable {
			marker = "#"
		}
		fmt.Fprintf(s.out, "  %s%s%s (%d)\n", marker, strings.Repeat("  ", o.Depth), o.Name, o.ID)
	}
}

func (s *shell) cmdSuggest(ctx context.Context, args []string) {
	if len(args) == 0 {
		return
	}
	switch args[0] {
	case "topic":
		if t, err := s.svc.ai.SuggestTopic(ctx); err == nil {
			fmt.Fprintf(s.out, "제안: [%s] %s\n", t.Category, t.Topic)
		}
	case "slug":
		if v, err := s.svc.ai.SuggestSlug(ctx, s.title); err == nil {
			fmt.Fprintf(s.out, "제안 slug: %s (적용하려면 slug %s)\n", v.Slug, v.Slug)
		}
	case "summary":
		if s.ed == nil {
			return
		}
		if v, err := s.svc.ai.SuggestSummary(ctx, s.ed.Content().HTML); err == nil {
			fmt.Fprintf(s.out, "제안 요약: %s\n", v.Summary)
		}
	}
}

// confirm asks before a destructive action; anything but y declines
func (s *shell) confirm(prompt string) bool {
	fmt.Fprintf(s.out, "%s [y/N] ", prompt)
	line, ok := <-s.lines
	return ok && strings.EqualFold(strings.TrimSpace(line), "y")
}

func (s *shell) cmdUserAdd(ctx context.Context, args []string) {
	if len(args) < 4 {
		fmt.Fprintln(s.out, "usage: useradd <loginId> <password> <name> <nickname> [role]")
		return
	}
	role := domain.RoleUser
	if len(args) > 4 {
		role = domain.UserRole(strings.ToUpper(args[4]))
	}
	s.svc.users.Create(ctx, domain.CreateUserRequest{ //nolint:errcheck
		LoginID:  args[0],
		Password: args[1],
		Name:     args[2],
		Nickname: args[3],
		Role:     role,
	})
}

func (s *shell) cmdUserMod(ctx context.Context, args []string) {
	if len(args) != 3 {
		fmt.Fprintln(s.out, "usage: usermod <id> name|nick|role <value>")
		return
	}
	var req domain.UpdateUserRequest
	switch args[1] {
	case "name":
		req.Name = args[2]
	case "nick":
		req.Nickname = args[2]
	case "role":
		req.Role = domain.UserRole(strings.ToUpper(args[2]))
	default:
		fmt.Fprintf(s.out, "알 수 없는 항목: %s\n", args[1])
		return
	}
	s.svc.users.Update(ctx, args[0], req) //nolint:errcheck
}

func (s *shell) cmdProfile(ctx context.Context, args []string) {
	if len(args) == 0 {
		p, err := s.svc.users.Profile(ctx)
		if err != nil {
			fmt.Fprintf(s.out, "프로필 조회 실패: %v\n", err)
			return
		}
		fmt.Fprintf(s.out, "%s (%s) — %s\n", p.Name, p.Nickname, p.LoginID)
		if p.ImageURL != "" {
			fmt.Fprintf(s.out, "  이미지: %s\n", p.ImageURL)
		}
		return
	}
	if len(args) != 2 {
		fmt.Fprintln(s.out, "usage: profile [name|nick|image <value>]")
		return
	}
	var req domain.UpdateProfileRequest
	switch args[0] {
	case "name":
		req.Name = args[1]
	case "nick":
		req.Nickname = args[1]
	case "image":
		f, err := os.Open(args[1])
		if err != nil {
			fmt.Fprintf(s.out, "파일을 열 수 없습니다: %v\n", err)
			return
		}
		defer f.Close() //nolint:errcheck
		url, err := s.svc.users.UploadProfileImage(ctx, filepath.Base(args[1]), f)
		if err != nil {
			return
		}
		req.ImageURL = url
	default:
		fmt.Fprintf(s.out, "알 수 없는 항목: %s\n", args[0])
		return
	}
	s.svc.users.UpdateProfile(ctx, req) //nolint:errcheck
}

// cmdTheme reads or writes the theme preference slot
func (s *shell) cmdTheme(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(s.out, "테마: %s\n", s.tokens.Theme())
		return
	}
	if err := s.tokens.SetTheme(args[0]); err != nil {
		fmt.Fprintf(s.out, "테마 저장 실패: %v\n", err)
	}
}

func (s *shell) cmdList(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "usage: list bullet|ordered|check")
		return
	}
	kind := map[string]string{
		"bullet":  document.ListUnordered,
		"ordered": document.ListOrdered,
		"check":   document.ListCheck,
	}[args[0]]
	if kind == "" {
		fmt.Fprintf(s.out, "알 수 없는 목록: %s\n", args[0])
		return
	}
	s.edDispatch(editor.ToggleList{Kind: kind})
}

// cmdImage uploads a local file and inserts it once the URL is back
func (s *shell) cmdImage(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(s.out, "usage: image <file> [alt]")
		return
	}
	if s.ed == nil {
		fmt.Fprintln(s.out, "편집 중인 글이 없습니다.")
		return
	}
	f, err := os.Open(args[0])
	if err != nil {
		fmt.Fprintf(s.out, "파일을 열 수 없습니다: %v\n", err)
		return
	}
	defer f.Close() //nolint:errcheck
	alt := strings.Join(args[1:], " ")
	if err := s.ed.InsertUploadedImage(ctx, filepath.Base(args[0]), f, alt); err != nil {
		fmt.Fprintf(s.out, "이미지 업로드 실패: %v\n", err)
		return
	}
	s.pushPreview()
}

func (s *shell) cmdTitle(rest string) {
	if s.editing == nil {
		return
	}
	s.title = rest
	s.svc.bridge.SetTitle(rest)
}

func (s *shell) edDispatch(cmd editor.Command) {
	s.edDo(func(ed *editor.Editor) error { return ed.Dispatch(cmd) })
}

func (s *shell) edDo(fn func(*editor.Editor) error) {
	if s.ed == nil {
		fmt.Fprintln(s.out, "편집 중인 글이 없습니다.")
		return
	}
	if err := fn(s.ed); err != nil {
		fmt.Fprintf(s.out, "편집 실패: %v\n", err)
		return
	}
	s.pushPreview()
}

func (s *shell) cmdSave(ctx context.Context, kind string) {
	if s.ed == nil || s.editing == nil {
		fmt.Fprintln(s.out, "편집 중인 글이 없습니다.")
		return
	}
	content := s.ed.Content()
	id := s.editing.ID

	switch kind {
	case "draft":
		s.svc.posts.SaveDraft(ctx, id, s.title, content.HTML, content.JSON, s.publish) //nolint:errcheck
	case "publish":
		s.svc.posts.Publish(ctx, id, s.title, content.HTML, content.JSON, s.publish) //nolint:errcheck
	case "archive":
		s.svc.posts.Archive(ctx, id, s.title, content.HTML, content.JSON, s.publish) //nolint:errcheck
	}
}

func (s *shell) printHelp() {
	fmt.Fprint(s.out, `이동:     go <path> · posts [page] [search] · open <id> · new · dashboard
세션:     login <id> <pw> [remember] · logout · theme [light|dark]
편집:     title <text> · type <text> · enter · bold|italic|underline|strike|code
          h1|h2|h3 · para · quote · list bullet|ordered|check · align <dir>
          lang <language> · link <url> · image <file> [alt] · undo · redo
발행:     slug <v> · desc <v> · cat <id> · save · publish · archive
댓글:     comments · hide|show|delc <id> · reply <id> <text>
계정:     users · useradd · usermod · userdel <id> · profile [name|nick|image <v>]
관리:     categories · suggest topic|slug|summary · delete <id> · quit
`)
}
